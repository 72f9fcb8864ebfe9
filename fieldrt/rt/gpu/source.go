package gpu

import (
	"regexp"
	"strconv"
)

const (
	ComputeEntryPoint  = "updateParticles"
	VertexEntryPoint   = "vertexShader"
	FragmentEntryPoint = "fragmentShader"

	// DefaultWorkgroupWidth is used when the compute entry point does not
	// declare @workgroup_size.
	DefaultWorkgroupWidth uint32 = 64
)

var workgroupSizeRe = regexp.MustCompile(`@workgroup_size\(\s*(\d+)`)

func entryPointRe(name string) *regexp.Regexp {
	return regexp.MustCompile(`\bfn\s+` + regexp.QuoteMeta(name) + `\s*\(`)
}

// HasEntryPoint reports whether src declares a function called name.
func HasEntryPoint(src, name string) bool {
	return entryPointRe(name).MatchString(src)
}

// WorkgroupWidth returns the x dimension of the @workgroup_size attribute that
// decorates entry. The attribute must appear between the previous function and
// entry itself.
func WorkgroupWidth(src, entry string) (uint32, bool) {
	loc := entryPointRe(entry).FindStringIndex(src)
	if loc == nil {
		return 0, false
	}
	head := src[:loc[0]]

	// only look at attributes after the previous declaration's closing brace
	for i := len(head) - 1; i >= 0; i-- {
		if head[i] == '}' {
			head = head[i+1:]
			break
		}
	}

	matches := workgroupSizeRe.FindAllStringSubmatch(head, -1)
	if len(matches) == 0 {
		return 0, false
	}
	w, err := strconv.ParseUint(matches[len(matches)-1][1], 10, 32)
	if err != nil || w == 0 {
		return 0, false
	}
	return uint32(w), true
}

// ThreadGroups is the number of groups of width threads needed to cover n
// items: ceil(n / width).
func ThreadGroups(n int, width uint32) uint32 {
	if n <= 0 {
		return 0
	}
	if width == 0 {
		width = 1
	}
	return (uint32(n) + width - 1) / width
}
