// Package mapping models WireMock-compatible stub mappings and converts them to
// and from the flat form values edited by the stubdesk mapping builder.
//
// # Wire model
//
// StubMapping mirrors the mock server's JSON contract. Two wire conventions are
// modelled as tagged variants and validated when decoding:
//
//   - the URL matcher: at most one of url, urlPattern, urlPath, urlPathPattern
//     and urlPathTemplate may be present (URLMatcher);
//   - request matchers: single-key objects such as {"equalTo": "x"} (Matcher).
//
// # Form values
//
// FormValues flattens a mapping into ordered rows that an editor can bind to
// field by field. ToFormValues and FromFormValues convert between the two and
// never fail: malformed drafts degrade to raw strings so that an in-progress
// edit is never lost.
//
//	fv := mapping.ToFormValues(m)
//	fv.URL = "/api/users"
//	updated := mapping.FromFormValues(fv)
//
// # Validation
//
// ValidateJSON checks a raw JSON document the way the raw editor does before a
// save, and ValidateForm reports per-field problems while a form is being edited.
package mapping
