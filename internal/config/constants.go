package config

// SourceFileExt is Lua's canonical source extension.
const SourceFileExt = ".lua"

// SourceFileExtensions are every extension the workspace manager treats as
// an analyzable source file, including the LuaJIT-specific ".luau" some
// toolchains use for typed dialects.
var SourceFileExtensions = []string{".lua", ".luau"}

// TrimSourceExt removes any recognized source extension from a filename.
// Returns the original string if no extension matches.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// HasSourceExt returns true if the path ends with any recognized source
// extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}
