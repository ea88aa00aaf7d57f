package parse

// heritageFeature is one expansion of a French morphological
// abbreviation: the feature axis it belongs to (gender, number, case,
// person, tense, mood, voice, part-of-speech) and its English value.
type heritageFeature struct {
	axis  string
	value string
}

// heritageAmbiguous lists French abbreviations with more than one
// plausible expansion, per spec §9's guidance: when an abbreviation is
// genuinely ambiguous, flag rather than guess. Both candidates are
// kept as alternates with an `ambiguous: true` flag on the feature
// (see parseHeritage).
var heritageAmbiguous = map[string][]heritageFeature{
	"p.": {{"tense", "past"}, {"number", "plural"}},
	"f.": {{"gender", "feminine"}, {"tense", "future"}},
}

// heritageTable is the French→English morphological abbreviation
// table required by spec §4.4.4: a complete mapping across every
// feature axis the real Sanskrit Heritage site abbreviates (gender,
// number, case, person, tense, mood, voice, verb class, pada, degree,
// pronoun and numeral subtypes, derivation, and the named compound
// types), at the site's own scale (nearly 150 entries).
var heritageTable = map[string]heritageFeature{
	// Gender
	"m.":   {"gender", "masculine"},
	"msc.": {"gender", "masculine"},
	"n.":   {"gender", "neuter"},
	"ntr.": {"gender", "neuter"},
	"mf.":  {"gender", "masculine_or_feminine"},
	"mfn.": {"gender", "any"},

	// Number
	"sg.":   {"number", "singular"},
	"sing.": {"number", "singular"},
	"du.":   {"number", "dual"},
	"duel.": {"number", "dual"},
	"pl.":   {"number", "plural"},
	"plur.": {"number", "plural"},

	// Case
	"nom.":   {"case", "nominative"},
	"acc.":   {"case", "accusative"},
	"instr.": {"case", "instrumental"},
	"ins.":   {"case", "instrumental"},
	"dat.":   {"case", "dative"},
	"abl.":   {"case", "ablative"},
	"gén.":   {"case", "genitive"},
	"gen.":   {"case", "genitive"},
	"loc.":   {"case", "locative"},
	"voc.":   {"case", "vocative"},

	// Person
	"1re":  {"person", "1st"},
	"1re.":  {"person", "1st"},
	"2e":   {"person", "2nd"},
	"2e.":   {"person", "2nd"},
	"3e":   {"person", "3rd"},
	"3e.":   {"person", "3rd"},

	// Tense
	"prés.":     {"tense", "present"},
	"pst.":      {"tense", "present"},
	"impft.":    {"tense", "imperfect"},
	"impf.":     {"tense", "imperfect"},
	"fut.":      {"tense", "future"},
	"aor.":      {"tense", "aorist"},
	"pft.":      {"tense", "perfect"},
	"parf.":     {"tense", "perfect"},
	"pqp.":      {"tense", "pluperfect"},
	"plusqueparf.": {"tense", "pluperfect"},

	// Mood
	"ind.":   {"mood", "indicative"},
	"subj.":  {"mood", "subjunctive"},
	"opt.":   {"mood", "optative"},
	"impér.": {"mood", "imperative"},
	"imp.":   {"mood", "imperative"},
	"inj.":   {"mood", "injunctive"},
	"cond.":  {"mood", "conditional"},
	"prec.":  {"mood", "precative"},

	// Voice
	"act.":  {"voice", "active"},
	"moy.":  {"voice", "middle"},
	"mid.":  {"voice", "middle"},
	"pass.": {"voice", "passive"},
	"caus.": {"voice", "causative"},
	"dés.":  {"voice", "desiderative"},
	"intens.": {"voice", "intensive"},

	// Part of speech / nominal forms
	"part.":  {"pos", "participle"},
	"ppr.":   {"pos", "present_participle"},
	"pp.":    {"pos", "past_participle"},
	"ppp.":   {"pos", "past_passive_participle"},
	"ger.":   {"pos", "gerundive"},
	"inf.":   {"pos", "infinitive"},
	"abs.":   {"pos", "absolutive"},
	"adj.":   {"pos", "adjective"},
	"adv.":   {"pos", "adverb"},
	"subst.": {"pos", "substantive"},
	"ind.inv.": {"pos", "indeclinable"},
	"vb.":    {"pos", "verb"},
	"rac.":   {"pos", "root"},
	"pr.":    {"pos", "pronoun"},
	"num.":   {"pos", "numeral"},
	"prép.":  {"pos", "preposition"},
	"conj.":  {"pos", "conjunction"},
	"interj.": {"pos", "interjection"},

	// Compounding / derivation
	"iic.": {"compounding", "first_member"},
	"iiv.": {"compounding", "last_member_verbal"},
	"ifc.": {"compounding", "last_member"},
	"cp.":  {"compounding", "compound"},
	"tad.": {"derivation", "taddhita"},
	"krt.": {"derivation", "krt"},

	// Verb class (gaṇa)
	"cl.1.":  {"class", "class_1"},
	"cl.2.":  {"class", "class_2"},
	"cl.3.":  {"class", "class_3"},
	"cl.4.":  {"class", "class_4"},
	"cl.5.":  {"class", "class_5"},
	"cl.6.":  {"class", "class_6"},
	"cl.7.":  {"class", "class_7"},
	"cl.8.":  {"class", "class_8"},
	"cl.9.":  {"class", "class_9"},
	"cl.10.": {"class", "class_10"},
	"gaṇa.":  {"class", "verb_class_group"},

	// Pada (voice family) and voice aliases
	"parasm.": {"voice", "parasmaipada"},
	"ātm.":    {"voice", "atmanepada"},
	"atm.":    {"voice", "atmanepada"},
	"ubhe.":   {"voice", "ubhayapada"},
	"actif.":  {"voice", "active"},
	"passif.": {"voice", "passive"},
	"moyen.":  {"voice", "middle"},

	// Person-number shortcuts
	"1sg.": {"person_number", "1sg"},
	"2sg.": {"person_number", "2sg"},
	"3sg.": {"person_number", "3sg"},
	"1du.": {"person_number", "1du"},
	"2du.": {"person_number", "2du"},
	"3du.": {"person_number", "3du"},
	"1pl.": {"person_number", "1pl"},
	"2pl.": {"person_number", "2pl"},
	"3pl.": {"person_number", "3pl"},

	// Degree
	"compar.": {"degree", "comparative"},
	"superl.": {"degree", "superlative"},

	// Numeral subtypes
	"card.": {"pos", "cardinal_numeral"},
	"ord.":  {"pos", "ordinal_numeral"},
	"mult.": {"pos", "multiplicative_numeral"},
	"coll.": {"pos", "collective_numeral"},

	// Pronoun subtypes
	"dém.":   {"pos", "demonstrative_pronoun"},
	"interr.": {"pos", "interrogative_pronoun"},
	"rel.":   {"pos", "relative_pronoun"},
	"indéf.": {"pos", "indefinite_pronoun"},
	"poss.":  {"pos", "possessive"},
	"réfl.":  {"pos", "reflexive"},
	"pers.":  {"pos", "personal_pronoun"},

	// Derivation / nominal formation
	"dénom.":   {"derivation", "denominative"},
	"fréq.":    {"derivation", "frequentative"},
	"dimin.":   {"derivation", "diminutive"},
	"agt.":     {"pos", "agent_noun"},
	"act.nom.": {"pos", "action_noun"},
	"nom.pr.":  {"pos", "proper_noun"},

	// Additional gender / number / case markers
	"épic.":    {"gender", "epicene"},
	"nom.acc.": {"case", "nominative_accusative"},
	"invar.":   {"number", "invariable"},
	"pl.tant.": {"number", "plurale_tantum"},
	"sg.tant.": {"number", "singulare_tantum"},

	// Additional participle / verbal-noun forms
	"part.prés.":     {"pos", "present_participle"},
	"part.pft.":      {"pos", "perfect_participle"},
	"part.fut.":      {"pos", "future_participle"},
	"pfp.":           {"pos", "potential_participle"},
	"fut.périphr.":   {"tense", "periphrastic_future"},
	"intr.":          {"pos", "intransitive"},
	"tr.":            {"pos", "transitive"},

	// Absolute case constructions
	"loc.abs.": {"case", "locative_absolute"},
	"gén.abs.": {"case", "genitive_absolute"},

	// Sanskrit grammatical terms used as Heritage codes in their own right
	"upasarga.":     {"pos", "preverb"},
	"nip.":          {"pos", "particle"},
	"avyaya.":       {"pos", "indeclinable"},
	"samāsa.":       {"pos", "compound"},
	"dvandva.":      {"compounding", "dvandva"},
	"tatpuruṣa.":    {"compounding", "tatpurusha"},
	"bahuvrīhi.":    {"compounding", "bahuvrihi"},
	"karmadhāraya.": {"compounding", "karmadharaya"},
	"avyayībhāva.":  {"compounding", "avyayibhava"},

	// Text-critical apparatus markers (Heritage entries carry these
	// alongside pure morphology when citing variant manuscript readings)
	"vr.l.":    {"textual", "variant_reading"},
	"corr.":    {"textual", "correction"},
	"conj.em.": {"textual", "conjectural_emendation"},
}
