package fingerprint

import "strings"

// emotionGroup is one Plutchik-style emotion's keyword table, per spec §4.1:
// "scans the lowercased text for any substring from a fixed per-emotion
// keyword table; sets the bit on the first hit per emotion."
type emotionGroup struct {
	bit      EmotionBits
	keywords []string
}

var emotionGroups = []emotionGroup{
	{EmotionJoy, []string{
		"开心", "高兴", "快乐", "愉快", "喜悦", "兴奋", "欣喜", "幸福", "爽", "乐",
		"happy", "joy", "joyful", "delighted", "glad", "pleased", "cheerful",
		"excited", "thrilled", "elated", "content", "satisfied", "amused",
	}},
	{EmotionTrust, []string{
		"信任", "相信", "依赖", "放心", "安心", "靠谱", "信赖", "托付",
		"trust", "faith", "confide", "reliable", "rely", "dependable",
		"loyal", "assured", "secure", "comfortable",
	}},
	{EmotionFear, []string{
		"害怕", "恐惧", "担心", "惊恐", "惧怕", "畏惧", "吓", "恐慌", "紧张",
		"afraid", "fear", "scared", "terrified", "anxious", "worried",
		"panic", "dread", "frightened", "nervous", "horror",
	}},
	{EmotionSurprise, []string{
		"惊讶", "吃惊", "震惊", "意外", "诧异", "惊奇", "没想到", "居然",
		"surprised", "surprise", "shocked", "astonished", "amazed",
		"startled", "unexpected", "stunned",
	}},
	{EmotionSadness, []string{
		"难过", "伤心", "悲伤", "痛苦", "失落", "沮丧", "忧伤", "哭", "委屈",
		"sad", "sorrow", "unhappy", "depressed", "grief", "miserable",
		"heartbroken", "gloomy", "disappointed", "upset",
	}},
	{EmotionDisgust, []string{
		"恶心", "讨厌", "厌恶", "反感", "嫌弃", "作呕", "恶心死了",
		"disgust", "disgusted", "gross", "repulsed", "revolted",
		"nauseated", "distaste", "loathe",
	}},
	{EmotionAnger, []string{
		"生气", "愤怒", "恼火", "气愤", "火大", "暴怒", "恼怒", "怒", "不爽",
		"angry", "anger", "furious", "mad", "rage", "irritated",
		"annoyed", "outraged", "enraged", "resentful",
	}},
	{EmotionAnticipation, []string{
		"期待", "盼望", "憧憬", "向往", "期望", "渴望", "迫不及待",
		"anticipate", "anticipation", "expect", "eager", "looking forward",
		"hopeful", "excitement", "await",
	}},
}

// ExtractEmotion scans lowercased text for emotion keywords, setting the
// bit for every group with at least one hit. Multiple bits may be set.
func ExtractEmotion(text string) EmotionBits {
	lower := strings.ToLower(text)

	var bits EmotionBits
	for _, group := range emotionGroups {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				bits |= group.bit
				break
			}
		}
	}
	return bits
}
