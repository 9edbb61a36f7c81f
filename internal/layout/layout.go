package layout

import (
	"slices"
	"strings"
)

// Entries with this prefix (editor state, VCS metadata) are never synced.
const hiddenPrefix = "."

// depsDir is the dependency cache directory convention of the frontend
// toolchain; syncing it would copy thousands of files nobody publishes.
const depsDir = "node_modules"

// DefaultStages lists the staging folders scanned under the project root,
// in scan order. Later stages overwrite earlier ones only when their files
// are newer, so the order has no correctness impact.
var DefaultStages = []string{
	"S1_기획",
	"S2_개발-1차",
	"S3_개발-2차",
	"S4_테스트",
	"S5_배포",
}

// AreaMapping pairs an area folder name inside a stage with its destination
// path relative to the project root. Dest uses forward slashes regardless of
// platform.
type AreaMapping struct {
	Area string `yaml:"area"`
	Dest string `yaml:"dest"`
}

// DefaultAreas maps area folders onto the flattened publishing layout:
// frontend content lands in pages/, everything else is grouped under api/.
// Slice order determines processing order; mappings are independent.
var DefaultAreas = []AreaMapping{
	{Area: "Frontend", Dest: "pages"},
	{Area: "Backend", Dest: "api/backend"},
	{Area: "Chatbot", Dest: "api/chatbot"},
	{Area: "Crawler", Dest: "api/crawler"},
	{Area: "Data", Dest: "api/data"},
}

// Excluded reports whether a directory entry name must not be synchronized.
// Excluded directories are not descended into, so nothing below them is ever
// copied. The extra list comes from the user configuration and is additive.
func Excluded(name string, extra []string) bool {
	if strings.HasPrefix(name, hiddenPrefix) {
		return true
	}
	if name == depsDir {
		return true
	}
	return slices.Contains(extra, name)
}
