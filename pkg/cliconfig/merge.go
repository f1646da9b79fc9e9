package cliconfig

// MergeConfig merges source config into target, updating sources tracking.
// Only non-zero values from source are applied.
func MergeConfig(target, source *CLIConfig, sourceType string) {
	if source == nil {
		return
	}
	if target.Sources == nil {
		target.Sources = make(map[string]string)
	}

	mergeString := func(key string, dst *string, src string) {
		if src != "" {
			*dst = src
			target.Sources[key] = sourceType
		}
	}

	mergeString("store", &target.Store, source.Store)
	mergeString("dataDir", &target.DataDir, source.DataDir)
	mergeString("defaultServer", &target.DefaultServer, source.DefaultServer)
	mergeString("defaultServerName", &target.DefaultServerName, source.DefaultServerName)
	mergeString("logLevel", &target.LogLevel, source.LogLevel)
	mergeString("logFormat", &target.LogFormat, source.LogFormat)
	mergeString("logFile", &target.LogFile, source.LogFile)

	// For booleans, checking `if source.X` cannot detect an explicit false.
	// SetFields (populated during file loading) records whether the key was
	// present in the source.
	if boolIsSet(source, "serverCreationDisabled") {
		target.ServerCreationDisabled = source.ServerCreationDisabled
		target.Sources["serverCreationDisabled"] = sourceType
	}
	if boolIsSet(source, "json") {
		target.JSON = source.JSON
		target.Sources["json"] = sourceType
	}
}

// boolIsSet reports whether a boolean field identified by its YAML key was
// explicitly set in the source config. Without SetFields (a config built in
// code) only true counts as set.
func boolIsSet(cfg *CLIConfig, yamlKey string) bool {
	if cfg.SetFields != nil {
		return cfg.SetFields[yamlKey]
	}
	switch yamlKey {
	case "serverCreationDisabled":
		return cfg.ServerCreationDisabled
	case "json":
		return cfg.JSON
	}
	return false
}
