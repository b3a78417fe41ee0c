package docctx

// toneSubstitutions maps "tone|targetLang" to lexical swaps applied during
// tone normalization. Only formal/technical/academic registers normalize.
var toneSubstitutions = map[string]map[string]string{
	"formal|zh": {
		"你":  "您",
		"谢了": "谢谢",
		"没事": "不客气",
	},
	"formal|en": {
		"hi":     "hello",
		"thanks": "thank you",
		"gonna":  "going to",
		"wanna":  "want to",
		"kids":   "children",
	},
	"formal|es": {
		"tú": "usted",
	},
	"technical|en": {
		"bug":   "defect",
		"crash": "failure",
	},
	"technical|zh": {
		"坏了": "发生故障",
	},
	"academic|en": {
		"a lot of": "numerous",
		"shows":    "demonstrates",
		"big":      "significant",
	},
}

// culturalSubstitutions maps "sourceLang|targetLang" to idiomatic swaps for
// business/academic salutations and connectives.
var culturalSubstitutions = map[string]map[string]string{
	"en|zh": {
		"Dear Sir or Madam": "尊敬的先生或女士",
		"Best regards":      "此致敬礼",
		"Kind regards":      "顺颂商祺",
		"To whom it may concern": "敬启者",
		"As mentioned above": "如上所述",
	},
	"zh|en": {
		"尊敬的":  "Dear",
		"此致敬礼": "Best regards",
		"如上所述": "As mentioned above",
	},
	"en|es": {
		"Dear Sir or Madam": "Estimado señor o señora",
		"Best regards":      "Saludos cordiales",
	},
}

// culturalDomains are the domains whose documents get cultural adaptation.
var culturalDomains = map[Domain]bool{
	DomainBusiness: true,
	DomainAcademic: true,
}

// ambiguousPronouns lists, per target language, the pronouns the pronoun
// resolution step may replace with a resolved subject.
var ambiguousPronouns = map[string][]string{
	"en": {"it", "they", "this", "that"},
	"zh": {"它", "他", "她", "这", "那"},
	"es": {"esto", "eso", "él", "ella"},
}
