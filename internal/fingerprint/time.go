package fingerprint

import (
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dlclark/regexp2"
)

// temporalHashSeed is XORed into the temporal hash, kept distinct from the
// semantic token hash seed so the two zones never correlate.
const temporalHashSeed uint64 = 0xC2B2AE3D27D4EB4F

// computeTemporalHash hashes a Unix-seconds timestamp with a dedicated
// seed into the 16-bit temporal zone. Callers never invoke this with
// ts == 0 (the caller in ComputeMultimodal treats that as "no signal").
func computeTemporalHash(ts uint64) uint16 {
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(ts >> (8 * uint(i)))
	}
	h := xxhash.Sum64(buf[:]) ^ temporalHashSeed
	return uint16(h)
}

// ApproxEpoch reproduces the original implementation's rough calendar
// proxy, (year-1970)*31_536_000 + month*2_592_000 + day*86_400, with no
// leap-year accounting. Mirrored exactly (not replaced with a proper
// calendar) so fingerprints stay bit-identical with any pre-existing
// on-disk data, per spec §9.
func ApproxEpoch(year, month, day int) int64 {
	return int64(year-1970)*31_536_000 + int64(month)*2_592_000 + int64(day)*86_400
}

// contentDatePattern matches "YYYY年MM月DD日" with one or two digit
// month/day groups, per spec §3.2.
var contentDatePattern = regexp2.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`, regexp2.None)

// ExtractContentTimestamp scans event content for a "YYYY年MM月DD日" date
// token and returns its approximate epoch, or 0 if none is present.
func ExtractContentTimestamp(text string) uint64 {
	m, err := contentDatePattern.FindStringMatch(text)
	if err != nil || m == nil {
		return 0
	}
	groups := m.Groups()
	if len(groups) < 4 {
		return 0
	}
	year := atoiSafe(groups[1].String())
	month := atoiSafe(groups[2].String())
	day := atoiSafe(groups[3].String())
	if year == 0 {
		return 0
	}
	epoch := ApproxEpoch(year, month, day)
	if epoch < 0 {
		return 0
	}
	return uint64(epoch)
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// relativeTimeRule is one row of the trigger-substring table in spec §4.1.
type relativeTimeRule struct {
	triggers []string
	offset   int64
}

// The first row with a matching trigger wins, so rows whose triggers
// contain another row's trigger ("just now" contains "now", "大前天"
// contains "前天") come before that row.
var relativeTimeRules = []relativeTimeRule{
	{[]string{"just now", "刚才"}, -60},
	{[]string{"today", "今天", "此刻", "当前", "now"}, 0},
	{[]string{"yesterday", "昨天", "昨日"}, -86_400},
	{[]string{"大前天", "前几天", "recently", "最近"}, -259_200},
	{[]string{"前天"}, -172_800},
	{[]string{"last week", "上周"}, -604_800},
	{[]string{"last month", "上个月"}, -2_592_000},
	{[]string{"last year", "去年"}, -31_536_000},
	{[]string{"前年"}, -63_072_000},
	{[]string{"morning", "早上", "上午"}, 0},
}

var literalYears = []int{2024, 2025, 2026}

// resolveQueryTimestamp runs the relative-time rule engine over the
// (already lowercased) query; all offsets apply only when refTime > 0. If
// no rule fires, it falls back to a literal year match mapped to that
// year's UTC start-of-year epoch. Returns 0 if nothing matches.
func resolveQueryTimestamp(lower string, refTime int64) int64 {
	if refTime > 0 {
		for _, rule := range relativeTimeRules {
			for _, trigger := range rule.triggers {
				if strings.Contains(lower, trigger) {
					return refTime + rule.offset
				}
			}
		}
	}

	for _, year := range literalYears {
		if strings.Contains(lower, itoa(year)) {
			return time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
		}
	}

	return 0
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// typeKeyword maps a lowercased trigger substring to the type it implies.
type typeKeyword struct {
	trigger string
	tag     TypeTag
}

var typeKeywords = []typeKeyword{
	{"pero", TypePerson},
	{"用户", TypePerson},
	{"女孩", TypePerson},
	{"rust", TypeTech},
	{"代码", TypeTech},
	{"算法", TypeTech},
	{"事情", TypeEvent},
	{"发生", TypeEvent},
	{"蝴蝶结", TypeObject},
	{"键盘", TypeObject},
}

// inferQueryType applies the small type-inference keyword table of
// spec §4.1 to an already-lowercased query.
func inferQueryType(lower string) TypeTag {
	for _, kw := range typeKeywords {
		if strings.Contains(lower, kw.trigger) {
			return kw.tag
		}
	}
	return TypeUnknown
}

// ComputeForQuery builds a query fingerprint: the semantic/affective zones
// as usual, plus a temporal zone resolved by the relative-time rule engine
// and a type zone from the small type-inference table, per spec §4.1.
func ComputeForQuery(text string, refTime int64) Fingerprint {
	lower := strings.ToLower(text)

	var ts uint64
	if resolved := resolveQueryTimestamp(lower, refTime); resolved > 0 {
		ts = uint64(resolved)
	}

	emotions := ExtractEmotion(text)
	typeTag := inferQueryType(lower)

	return ComputeMultimodal(text, ts, emotions, typeTag)
}
