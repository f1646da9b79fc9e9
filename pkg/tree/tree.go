// Package tree builds the explorer tree of servers, folders and mappings.
package tree

import (
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"github.com/getmockd/stubdesk/pkg/mapping"
	"github.com/getmockd/stubdesk/pkg/server"
)

// NodeType identifies what a tree node represents.
type NodeType string

// Node types.
const (
	TypeRoot          NodeType = "root"
	TypeServer        NodeType = "server"
	TypeServerCreate  NodeType = "server.create"
	TypeMappingCreate NodeType = "mapping.create"
	TypeMappings      NodeType = "mappings"
	TypeFolder        NodeType = "folder"
	TypeMapping       NodeType = "mapping"
)

// Fixed ids and labels.
const (
	RootID             = "root"
	RootLabel          = "servers"
	ServerCreateID     = "server.create"
	ServerCreateLabel  = "create server"
	MappingCreateLabel = "create mapping"
	MappingsLabel      = "mappings"
)

// NodeData carries the references a node needs to act on its target.
type NodeData struct {
	ServerName string `json:"serverName,omitempty"`
	MappingID  string `json:"mappingId,omitempty"`
	Folder     string `json:"folder,omitempty"`
	CreationID string `json:"creationId,omitempty"`
}

// Node is one entry of the explorer tree.
type Node struct {
	ID        string    `json:"id"`
	Type      NodeType  `json:"type"`
	Label     string    `json:"label"`
	IsCurrent bool      `json:"isCurrent,omitempty"`
	Data      *NodeData `json:"data,omitempty"`
	Children  []*Node   `json:"children,omitempty"`
}

// Entry is a loaded mapping together with the id it is stored under.
type Entry struct {
	ID      string
	Mapping *mapping.StubMapping
}

// EntriesFrom keys mappings by their id, falling back to their uuid.
func EntriesFrom(mappings []*mapping.StubMapping) []Entry {
	entries := make([]Entry, 0, len(mappings))
	for _, m := range mappings {
		if m == nil {
			continue
		}
		id := m.ID
		if id == "" {
			id = m.UUID
		}
		entries = append(entries, Entry{ID: id, Mapping: m})
	}
	return entries
}

// Options tune how the mappings level is built.
type Options struct {
	// OpenIDs are the mapping ids currently open in the editor.
	OpenIDs []string
	// FolderPattern restricts the tree to mappings whose folder matches this
	// doublestar glob, e.g. "users/**". Empty means no filtering.
	FolderPattern string
}

func (o Options) isOpen(id string) bool {
	for _, open := range o.OpenIDs {
		if open == id {
			return true
		}
	}
	return false
}

// FolderSegments splits a folder path into its non-blank segments.
func FolderSegments(folder string) []string {
	var segments []string
	for _, s := range strings.Split(folder, "/") {
		if strings.TrimSpace(s) != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// folderGroup accumulates one folder while entries are partitioned.
type folderGroup struct {
	node     *Node
	children map[string]*folderGroup
	entries  []Entry
}

func newFolderGroup(serverName, path, segment string) *folderGroup {
	return &folderGroup{
		node: &Node{
			ID:    serverName + ".mappings.folder." + path,
			Type:  TypeFolder,
			Label: segment,
			Data:  &NodeData{ServerName: serverName, Folder: path},
		},
		children: make(map[string]*folderGroup),
	}
}

// BuildMappings builds the children of a server's mappings node: the folder
// hierarchy sorted by name, each folder listing its sub-folders before its own
// mappings, followed by the mappings that have no folder. Mapping order within
// a folder follows entries.
func BuildMappings(serverName string, entries []Entry, opts Options) []*Node {
	roots := make(map[string]*folderGroup)
	var unfiled []Entry

	for _, entry := range entries {
		if entry.Mapping == nil {
			continue
		}

		segments := FolderSegments(entry.Mapping.Folder())
		if opts.FolderPattern != "" {
			if len(segments) == 0 {
				continue
			}
			if ok, err := doublestar.Match(opts.FolderPattern, strings.Join(segments, "/")); err != nil || !ok {
				continue
			}
		}
		if len(segments) == 0 {
			unfiled = append(unfiled, entry)
			continue
		}

		level := roots
		path := ""
		var group *folderGroup
		for _, segment := range segments {
			if path == "" {
				path = segment
			} else {
				path += "/" + segment
			}
			group = level[segment]
			if group == nil {
				group = newFolderGroup(serverName, path, segment)
				level[segment] = group
			}
			level = group.children
		}
		group.entries = append(group.entries, entry)
	}

	nodes := buildFolders(serverName, roots, opts)
	for _, entry := range unfiled {
		nodes = append(nodes, mappingNode(serverName, entry, opts))
	}
	return nodes
}

func buildFolders(serverName string, groups map[string]*folderGroup, opts Options) []*Node {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	nodes := make([]*Node, 0, len(names))
	for _, name := range names {
		group := groups[name]
		group.node.Children = buildFolders(serverName, group.children, opts)
		for _, entry := range group.entries {
			group.node.Children = append(group.node.Children, mappingNode(serverName, entry, opts))
		}
		nodes = append(nodes, group.node)
	}
	return nodes
}

func mappingNode(serverName string, entry Entry, opts Options) *Node {
	return &Node{
		ID:        entry.ID,
		Type:      TypeMapping,
		Label:     entry.Mapping.Label(),
		IsCurrent: opts.isOpen(entry.ID),
		Data:      &NodeData{ServerName: serverName, MappingID: entry.ID},
	}
}

// Input is everything needed to build the full explorer tree.
type Input struct {
	Servers []server.Server
	// Mappings holds the loaded mappings per server name. Servers without an
	// entry have not been loaded yet and get no children.
	Mappings map[string][]Entry
	Options  Options
	// ServerCreationDisabled hides the "create server" node.
	ServerCreationDisabled bool
	// NewCreationID returns the id of a pending "create mapping" action.
	// Defaults to uuid.NewString.
	NewCreationID func() string
}

// Build builds the explorer tree rooted at the "servers" node.
func Build(in Input) *Node {
	newID := in.NewCreationID
	if newID == nil {
		newID = uuid.NewString
	}

	root := &Node{ID: RootID, Type: TypeRoot, Label: RootLabel, Children: []*Node{}}

	for _, srv := range in.Servers {
		serverNode := &Node{ID: srv.Name, Type: TypeServer, Label: srv.Name, Children: []*Node{}}

		if entries, loaded := in.Mappings[srv.Name]; loaded {
			creationID := newID()
			serverNode.Children = append(serverNode.Children,
				&Node{
					ID:    srv.Name + ".mapping.create." + creationID,
					Type:  TypeMappingCreate,
					Label: MappingCreateLabel,
					Data:  &NodeData{ServerName: srv.Name, CreationID: creationID},
				},
				&Node{
					ID:       srv.Name + ".mappings",
					Type:     TypeMappings,
					Label:    MappingsLabel,
					Data:     &NodeData{ServerName: srv.Name},
					Children: BuildMappings(srv.Name, entries, in.Options),
				},
			)
		}

		root.Children = append(root.Children, serverNode)
	}

	if !in.ServerCreationDisabled {
		root.Children = append(root.Children, &Node{
			ID:    ServerCreateID,
			Type:  TypeServerCreate,
			Label: ServerCreateLabel,
		})
	}
	return root
}

// ExistingFolders returns every folder in use and all of their parents,
// sorted, for folder suggestions in the editor.
func ExistingFolders(entries []Entry) []string {
	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry.Mapping == nil {
			continue
		}
		path := ""
		for _, segment := range FolderSegments(entry.Mapping.Folder()) {
			if path == "" {
				path = segment
			} else {
				path += "/" + segment
			}
			seen[path] = true
		}
	}

	folders := make([]string, 0, len(seen))
	for f := range seen {
		folders = append(folders, f)
	}
	sort.Strings(folders)
	return folders
}

// Walk calls fn for every node depth-first, parents before children.
func Walk(n *Node, fn func(n *Node, depth int)) {
	walk(n, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int)) {
	if n == nil {
		return
	}
	fn(n, depth)
	for _, child := range n.Children {
		walk(child, depth+1, fn)
	}
}
