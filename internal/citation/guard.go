package citation

// VersionSegment marks a request for a specific historical version.
const VersionSegment = "version"

// ShouldEmit reports whether citation tags belong on the page addressed by
// the request path segments following the page and operation, e.g.
// ["42", "version", "3"] for /article/view/42/version/3. Only the canonical
// copy of a submission carries tags, so versioned paths report false.
func ShouldEmit(segments []string) bool {
	return len(segments) < 2 || segments[1] != VersionSegment
}
