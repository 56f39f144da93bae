package catalog

// The 13 domains of the DSM-5 Self-Rated Level 1 Cross-Cutting Symptom
// Measure (adult), 23 items total. Thresholds follow the instrument: a
// rating of 2 (mild) on any item flags the domain, except suicidality,
// psychosis, and substance use where any rating of 1 (slight) flags it.
var screeningDomains = []ScreeningDomain{
	{
		ID:    "depression",
		Label: "Depression",
		Items: []string{
			"Little interest or pleasure in doing things",
			"Feeling down, depressed, or hopeless",
		},
		Threshold: 2,
		Level2:    "PHQ-9",
	},
	{
		ID:    "anger",
		Label: "Anger",
		Items: []string{
			"Feeling more irritated, grouchy, or angry than usual",
		},
		Threshold: 2,
		Level2:    "PROMIS Emotional Distress - Anger",
	},
	{
		ID:    "mania",
		Label: "Mania",
		Items: []string{
			"Sleeping less than usual, but still having a lot of energy",
			"Starting lots more projects than usual or doing more risky things than usual",
		},
		Threshold: 2,
		Level2:    "Altman Self-Rating Mania Scale",
	},
	{
		ID:    "anxiety",
		Label: "Anxiety",
		Items: []string{
			"Feeling nervous, anxious, frightened, worried, or on edge",
			"Feeling panic or being frightened",
			"Avoiding situations that make you anxious",
		},
		Threshold: 2,
		Level2:    "GAD-7",
	},
	{
		ID:    "somatic",
		Label: "Somatic Symptoms",
		Items: []string{
			"Unexplained aches and pains (e.g. head, back, joints, abdomen, legs)",
			"Feeling that your illnesses are not being taken seriously enough",
		},
		Threshold: 2,
		Level2:    "PHQ-15",
	},
	{
		ID:    "suicidality",
		Label: "Suicidal Ideation",
		Items: []string{
			"Thoughts of actually hurting yourself",
		},
		Threshold: 1,
		Level2:    "C-SSRS",
	},
	{
		ID:    "psychosis",
		Label: "Psychosis",
		Items: []string{
			"Hearing things other people could not hear, such as voices even when no one was around",
			"Feeling that someone could hear your thoughts, or that you could hear what another person was thinking",
		},
		Threshold: 1,
		Level2:    "Clinician-Rated Dimensions of Psychosis Symptom Severity",
	},
	{
		ID:    "sleep",
		Label: "Sleep Problems",
		Items: []string{
			"Problems with sleep that affected your sleep quality overall",
		},
		Threshold: 2,
		Level2:    "PROMIS Sleep Disturbance",
	},
	{
		ID:    "memory",
		Label: "Memory",
		Items: []string{
			"Problems with memory (e.g. learning new information) or with location (e.g. finding your way home)",
		},
		Threshold: 2,
		Level2:    "Montreal Cognitive Assessment",
	},
	{
		ID:    "repetitive",
		Label: "Repetitive Thoughts and Behaviors",
		Items: []string{
			"Unpleasant thoughts, urges, or images that repeatedly enter your mind",
			"Feeling driven to perform certain behaviors or mental acts over and over again",
		},
		Threshold: 2,
		Level2:    "Florida Obsessive-Compulsive Inventory",
	},
	{
		ID:    "dissociation",
		Label: "Dissociation",
		Items: []string{
			"Feeling detached or distant from yourself, your body, your physical surroundings, or your memories",
		},
		Threshold: 2,
		Level2:    "Dissociative Experiences Scale II",
	},
	{
		ID:    "personality",
		Label: "Personality Functioning",
		Items: []string{
			"Not knowing who you really are or what you want out of life",
			"Not feeling close to other people or enjoying your relationships with them",
		},
		Threshold: 2,
		Level2:    "Level of Personality Functioning Scale",
	},
	{
		ID:    "substance",
		Label: "Substance Use",
		Items: []string{
			"Drinking at least 4 drinks of any kind of alcohol in a single day",
			"Smoking any cigarettes, a cigar, or pipe, or using snuff or chewing tobacco",
			"Using any medicines on your own without a doctor's prescription, or in greater amounts or longer than prescribed",
		},
		Threshold: 1,
		Level2:    "WHO ASSIST",
	},
}

// The six PID-5 trait domains, six brief items each, rated 0-3. Psychoticism
// has no ICD-11 trait qualifier; ICD-11 codes schizotypal presentations
// separately.
var traitDomains = []TraitDomain{
	{
		ID:         "negative_affectivity",
		Label:      "Negative Affectivity",
		ICD11Trait: "Negative Affectivity",
		Items: []string{
			"I worry about almost everything",
			"I get emotional easily, often for very little reason",
			"I fear being alone in life more than anything else",
			"My emotions are unpredictable",
			"Even small setbacks make me feel like everything is falling apart",
			"I am a very anxious person",
		},
	},
	{
		ID:         "detachment",
		Label:      "Detachment",
		ICD11Trait: "Detachment",
		Items: []string{
			"I don't like to get too close to people",
			"I keep my distance from people",
			"I prefer to keep romance out of my life",
			"I don't like spending time with others",
			"Nothing seems to interest me very much",
			"I rarely get enthusiastic about anything",
		},
	},
	{
		ID:         "antagonism",
		Label:      "Antagonism",
		ICD11Trait: "Dissociality",
		Items: []string{
			"It's no big deal if I hurt other people's feelings",
			"I use people to get what I want",
			"I'll stretch the truth if it's to my advantage",
			"Sometimes I need to exaggerate to get ahead",
			"I deserve special treatment",
			"I often have to deal with people who are less important than me",
		},
	},
	{
		ID:         "disinhibition",
		Label:      "Disinhibition",
		ICD11Trait: "Disinhibition",
		Items: []string{
			"I feel like I act totally on impulse",
			"Even though I know better, I can't stop making rash decisions",
			"Others see me as irresponsible",
			"I'm not good at planning ahead",
			"I often forget to follow through on agreements",
			"I start things without thinking about how I will finish them",
		},
	},
	{
		ID:         "psychoticism",
		Label:      "Psychoticism",
		ICD11Trait: "Schizotypal pattern (coded separately in ICD-11)",
		Items: []string{
			"My thoughts often don't make sense to others",
			"I often have thoughts that make sense to me but that other people say are strange",
			"Sometimes ordinary things seem unreal or like they are a different shape than usual",
			"I have trouble keeping my thoughts on track",
			"I often sense the presence of someone who is not actually there",
			"Other people seem to find my ideas hard to follow",
		},
	},
	{
		ID:         "anankastia",
		Label:      "Anankastia",
		ICD11Trait: "Anankastia",
		Items: []string{
			"I insist on absolute perfection in everything I do",
			"I keep approaching things the same way, even when it isn't working",
			"It bothers me greatly when things are not in their proper order",
			"I check things several times to make sure they are right",
			"People complain about my need to have everything arranged just so",
			"I follow rules and schedules very strictly",
		},
	},
}

// WHODAS 2.0 12-item version, standard item order S1-S12.
var whodasItems = []WHODASItem{
	{Domain: "Mobility", Text: "Standing for long periods such as 30 minutes"},
	{Domain: "Life activities", Text: "Taking care of your household responsibilities"},
	{Domain: "Cognition", Text: "Learning a new task, for example, learning how to get to a new place"},
	{Domain: "Participation", Text: "Joining in community activities in the same way as anyone else can"},
	{Domain: "Participation", Text: "Being emotionally affected by your health problems"},
	{Domain: "Cognition", Text: "Concentrating on doing something for ten minutes"},
	{Domain: "Mobility", Text: "Walking a long distance such as a kilometre"},
	{Domain: "Self-care", Text: "Washing your whole body"},
	{Domain: "Self-care", Text: "Getting dressed"},
	{Domain: "Getting along", Text: "Dealing with people you do not know"},
	{Domain: "Getting along", Text: "Maintaining a friendship"},
	{Domain: "Life activities", Text: "Your day-to-day work"},
}

var gateInfos = []GateInfo{
	{
		Step:        0,
		Name:        "intake",
		Label:       "Intake",
		Description: "Capture patient identity, date of birth, and the reason for referral.",
	},
	{
		Step:        1,
		Name:        "consistency",
		Label:       "Validity Check",
		Description: "Rule out symptom exaggeration: rate presentation inconsistency, external incentive, and cooperation. Advisory only.",
	},
	{
		Step:        2,
		Name:        "substance",
		Label:       "Substance Exclusion",
		Description: "Record substance use and the temporal relation between use and symptoms.",
	},
	{
		Step:        3,
		Name:        "medical",
		Label:       "Medical Exclusion",
		Description: "Record somatic conditions, lab findings, and how far they explain the presentation.",
	},
	{
		Step:        4,
		Name:        "screening",
		Label:       "Cross-Cutting Screening",
		Description: "DSM-5 Level 1 cross-cutting symptom measure. Domain thresholds select Level 2 follow-up instruments.",
	},
	{
		Step:        5,
		Name:        "disorder",
		Label:       "Disorder Modules",
		Description: "Work the triggered Level 2 modules and record diagnoses with confidence and severity.",
	},
	{
		Step:        6,
		Name:        "functioning",
		Label:       "Functioning",
		Description: "Rate global and domain functioning: GAF, WHODAS 2.0, degree of disability, psychosocial stressors.",
	},
	{
		Step:        7,
		Name:        "complete",
		Label:       "Synopsis",
		Description: "The workflow is complete. Review the multiaxial synopsis and export the chart.",
	},
}

var severityLabels = []string{
	"None (not at all)",
	"Slight (rare, less than a day or two)",
	"Mild (several days)",
	"Moderate (more than half the days)",
	"Severe (nearly every day)",
}

var traitLabels = []string{
	"Very false or often false",
	"Sometimes or somewhat false",
	"Sometimes or somewhat true",
	"Very true or often true",
}

var whodasScale = []string{
	"None",
	"Mild",
	"Moderate",
	"Severe",
	"Extreme or cannot do",
}

var stressors = []string{
	"Problems with primary support group",
	"Problems related to the social environment",
	"Educational problems",
	"Occupational problems",
	"Housing problems",
	"Economic problems",
	"Problems with access to health care services",
	"Problems related to interaction with the legal system or crime",
	"Exposure to disasters, war, or other hostilities",
	"Acute life events (loss, separation, bereavement)",
	"Chronic interpersonal conflict",
	"Migration or acculturation stress",
}

var substances = []string{
	"None",
	"Alcohol",
	"Cannabis",
	"Opioids",
	"Stimulants",
	"Sedatives or hypnotics",
	"Hallucinogens",
	"Inhalants",
	"Tobacco or nicotine",
	"Caffeine",
	"Other",
}

var remissionFactors = []string{
	"Unknown",
	"Time since onset",
	"Coping strategies",
	"Social support",
	"Psychotherapy",
	"Medication",
	"Lifestyle change",
	"Spontaneous remission",
}

var caveCategories = []string{
	"interaction",
	"lab_artifact",
	"contraindication",
	"temporal",
	"diagnostic",
	"other",
}

var investigationPriorities = []string{
	"urgent",
	"important",
	"follow_up",
}
