package keyword

// stopwords is the closed-class list of spec §4.7: Chinese function words
// plus an English closed-class list (articles, prepositions, pronouns,
// modal/auxiliary verbs, conjunctions). Applied uniformly wherever the
// engine resolves free text into a feature (internal/graph's
// AddFeature/GetOrCreateFeature, and here in the matcher's vocabulary).
var stopwords = buildStopwordSet()

func buildStopwordSet() map[string]struct{} {
	words := []string{
		// Chinese particles / function words.
		"的", "了", "在", "是", "我", "有", "和", "就", "不", "人", "都", "一",
		"一个", "上", "也", "很", "到", "说", "要", "去", "你", "会", "着", "没有",
		"看", "好", "自己", "这", "那", "这个", "那个", "吧", "啊", "呢", "吗",
		"嗯", "哦", "呀", "哈", "而且", "但是", "因为", "所以", "如果", "虽然",
		"可是", "并且", "或者", "还是", "与", "及", "对", "把", "被", "让", "给",
		"从", "向", "为", "以", "之", "其", "此", "且", "又", "再", "还", "就是",
		"之类", "什么", "怎么", "哪里", "哪个", "谁", "多少", "几", "这些", "那些",

		// English closed-class: articles, pronouns, prepositions, conjunctions,
		// modal/auxiliary verbs.
		"a", "an", "the", "i", "me", "my", "mine", "myself", "we", "us", "our",
		"ours", "ourselves", "you", "your", "yours", "yourself", "yourselves",
		"he", "him", "his", "himself", "she", "her", "hers", "herself", "it",
		"its", "itself", "they", "them", "their", "theirs", "themselves",
		"what", "which", "who", "whom", "this", "that", "these", "those",
		"am", "is", "are", "was", "were", "be", "been", "being", "have",
		"has", "had", "having", "do", "does", "did", "doing", "will",
		"would", "shall", "should", "can", "could", "may", "might", "must",
		"and", "but", "if", "or", "because", "as", "until", "while", "of",
		"at", "by", "for", "with", "about", "against", "between", "into",
		"through", "during", "before", "after", "above", "below", "to",
		"from", "up", "down", "in", "out", "on", "off", "over", "under",
		"again", "further", "then", "once", "here", "there", "when", "where",
		"why", "how", "all", "any", "both", "each", "few", "more", "most",
		"other", "some", "such", "no", "nor", "not", "only", "own", "same",
		"so", "than", "too", "very", "s", "t", "just", "don", "now",
		"isn", "aren", "wasn", "weren", "hasn", "haven", "hadn", "doesn",
		"didn", "won", "wouldn", "shan", "shouldn", "can't", "couldn",
		"mightn", "mustn", "let", "lets", "ll", "m", "o", "re", "ve", "y",
		"theirs", "ours", "yours", "hers", "its",
	}

	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// IsStopword reports whether the lowercased word is in the closed-class
// stopword list.
func IsStopword(lowered string) bool {
	_, ok := stopwords[lowered]
	return ok
}
