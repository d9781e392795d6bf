package engine

// Syndrome names, in rule evaluation order.
const (
	SyndromeForwardHead      = "Forward Head Posture"
	SyndromeUpperCrossed     = "Upper Crossed Syndrome"
	SyndromeLowerCrossed     = "Lower Crossed Syndrome"
	SyndromeKyphosisLordosis = "Kyphosis-Lordosis Posture"
	SyndromeFlatBack         = "Flat Back Posture"
	SyndromeSwayBack         = "Sway Back Posture"
	SyndromeScoliotic        = "Scoliotic Posture"
	SyndromeIdeal            = "Ideal Posture"
)

// knowledgeFor returns the fixed clinical payload for a syndrome.
// Severity and confidence are filled in by the caller.
func knowledgeFor(name string) PostureClassification {
	if c, ok := knowledgeBase[name]; ok {
		return c
	}
	return PostureClassification{
		Classification: name,
		Description:    "Postural deviation without a catalogued clinical profile.",
		Prognosis:      PrognosisFair,
	}
}

// idealPosture is the fallback classification when no syndrome rule
// triggers.
func idealPosture() PostureClassification {
	return PostureClassification{
		Classification:              SyndromeIdeal,
		Description:                 "Alignment within clinical norm ranges across all measured regions.",
		MusculoskeletalImplications: []string{},
		CompensatoryPatterns:        []string{},
		ClinicalSymptoms:            []string{},
		ExerciseRecommendations: ExercisePlan{
			Stretching:    []string{"Maintain current flexibility routine"},
			Strengthening: []string{"Maintain current strengthening routine"},
			Postural:      []string{"Periodic posture checks during prolonged sitting"},
		},
		ErgonomicConsiderations: []string{"Keep workstation at current configuration"},
		Prognosis:               PrognosisExcellent,
		Severity:                SeverityMild,
		Confidence:              0.95,
	}
}

var knowledgeBase = map[string]PostureClassification{
	SyndromeForwardHead: {
		Classification: SyndromeForwardHead,
		Description:    "Anterior translation of the head relative to the shoulder girdle with a reduced craniovertebral angle.",
		MusculoskeletalImplications: []string{
			"Shortened suboccipital and upper trapezius musculature",
			"Lengthened and weakened deep cervical flexors",
			"Increased compressive load on the lower cervical segments",
		},
		CompensatoryPatterns: []string{
			"Upper cervical extension to level the gaze",
			"Scapular elevation during arm tasks",
			"Increased thoracic flexion under fatigue",
		},
		ClinicalSymptoms: []string{
			"Cervicogenic headache",
			"Neck and upper trapezius tension",
			"Early fatigue during desk work",
		},
		ExerciseRecommendations: ExercisePlan{
			Stretching: []string{
				"Suboccipital release against a wall",
				"Upper trapezius stretch with gentle overpressure",
				"Pectoralis minor doorway stretch",
			},
			Strengthening: []string{
				"Chin tucks, 3 sets of 10 with a 5 second hold",
				"Deep neck flexor endurance holds in supine",
				"Prone cervical retraction with lift-off",
			},
			Postural: []string{
				"Monitor ear-over-shoulder alignment hourly",
				"Raise screen to eye level",
			},
		},
		ErgonomicConsiderations: []string{
			"Position the monitor so the top third sits at eye height",
			"Avoid prolonged phone use with a flexed neck",
		},
		Prognosis: PrognosisGood,
	},
	SyndromeUpperCrossed: {
		Classification: SyndromeUpperCrossed,
		Subtype:        "Janda pattern",
		Description:    "Crossed pattern of tight upper trapezius/pectorals with weak deep neck flexors and lower scapular stabilizers, combining forward head, protracted shoulders, and increased thoracic kyphosis.",
		MusculoskeletalImplications: []string{
			"Facilitated upper trapezius, levator scapulae, and pectoral group",
			"Inhibited serratus anterior and middle/lower trapezius",
			"Altered glenohumeral resting position with reduced subacromial space",
		},
		CompensatoryPatterns: []string{
			"Scapular anterior tilt during overhead reach",
			"Lumbar extension to offset thoracic flexion",
			"Dominant accessory breathing pattern",
		},
		ClinicalSymptoms: []string{
			"Interscapular aching",
			"Shoulder impingement-type pain with elevation",
			"Tension-type headache",
		},
		ExerciseRecommendations: ExercisePlan{
			Stretching: []string{
				"Pectoralis major doorway stretch",
				"Thoracic extension over a foam roller",
				"Levator scapulae stretch",
			},
			Strengthening: []string{
				"Scapular retractions, 3 sets of 15",
				"Wall slides with serratus activation",
				"Prone Y-T-W raises",
			},
			Postural: []string{
				"Wall posture practice, 30 second holds",
				"Break up sitting every 30 minutes",
			},
		},
		ErgonomicConsiderations: []string{
			"Bring keyboard and mouse close to avoid reaching",
			"Use a chair with thoracic-height back support",
		},
		Prognosis: PrognosisFair,
	},
	SyndromeLowerCrossed: {
		Classification: SyndromeLowerCrossed,
		Subtype:        "Janda pattern",
		Description:    "Crossed pattern of tight hip flexors/lumbar erectors with weak abdominals and gluteals, presenting as anterior pelvic tilt with increased lumbar lordosis.",
		MusculoskeletalImplications: []string{
			"Shortened iliopsoas and rectus femoris",
			"Inhibited gluteus maximus and abdominal wall",
			"Increased lumbar facet loading in standing",
		},
		CompensatoryPatterns: []string{
			"Hamstring overactivity during hip extension",
			"Knee hyperextension in quiet standing",
			"Thoracolumbar hinge during trunk extension",
		},
		ClinicalSymptoms: []string{
			"Low back ache after prolonged standing",
			"Anterior hip tightness",
			"Reduced gluteal activation during gait",
		},
		ExerciseRecommendations: ExercisePlan{
			Stretching: []string{
				"Half-kneeling hip flexor stretch",
				"Rectus femoris stretch in side lying",
				"Prayer stretch for lumbar erectors",
			},
			Strengthening: []string{
				"Pelvic tilts, 3 sets of 12",
				"Glute bridges with posterior tilt bias",
				"Dead bug progressions for the anterior core",
			},
			Postural: []string{
				"Stack ribs over pelvis during standing tasks",
				"Avoid standing with locked knees",
			},
		},
		ErgonomicConsiderations: []string{
			"Alternate sit-stand positions through the day",
			"Use a footrest to reduce anterior pelvic drag when seated",
		},
		Prognosis: PrognosisFair,
	},
	SyndromeKyphosisLordosis: {
		Classification: SyndromeKyphosisLordosis,
		Description:    "Combined increase of thoracic kyphosis and lumbar lordosis with anterior pelvic tilt, the classic kypholordotic alignment.",
		MusculoskeletalImplications: []string{
			"Adaptive shortening of hip flexors and lumbar extensors",
			"Overstretched abdominal wall and thoracic extensors",
			"Elevated shear stress at the lumbosacral junction",
		},
		CompensatoryPatterns: []string{
			"Forward head carriage to rebalance the trunk",
			"Posterior weight shift through the heels",
		},
		ClinicalSymptoms: []string{
			"Mid-back stiffness",
			"Lumbar discomfort with extension-biased activity",
		},
		ExerciseRecommendations: ExercisePlan{
			Stretching: []string{
				"Thoracic extensions over a rolled towel",
				"Hip flexor stretching in half kneeling",
			},
			Strengthening: []string{
				"Segmental spinal extension strengthening",
				"Posterior pelvic tilt control drills",
			},
			Postural: []string{
				"Tall-spine cueing during daily tasks",
			},
		},
		ErgonomicConsiderations: []string{
			"Lumbar roll sized to avoid exaggerating the lordosis",
		},
		Prognosis: PrognosisFair,
	},
	SyndromeFlatBack: {
		Classification: SyndromeFlatBack,
		Description:    "Reduced thoracic and lumbar curves with posterior pelvic tilt, limiting the spine's shock-absorbing capacity.",
		MusculoskeletalImplications: []string{
			"Shortened hamstrings and abdominal wall",
			"Reduced lumbar extensor endurance",
			"Diminished axial load distribution",
		},
		CompensatoryPatterns: []string{
			"Hip flexion bias in standing",
			"Forward head to regain sagittal balance",
		},
		ClinicalSymptoms: []string{
			"Difficulty standing for long periods",
			"Lumbar fatigue with extension demand",
		},
		ExerciseRecommendations: ExercisePlan{
			Stretching: []string{
				"Hamstring stretching with neutral spine",
				"Abdominal wall opening over a bolster",
			},
			Strengthening: []string{
				"Lumbar extension endurance holds",
				"Hip hinge pattern training",
			},
			Postural: []string{
				"Restore gentle lumbar curve when seated",
			},
		},
		ErgonomicConsiderations: []string{
			"Add lumbar support shaped to encourage lordosis",
		},
		Prognosis: PrognosisFair,
	},
	SyndromeSwayBack: {
		Classification: SyndromeSwayBack,
		Subtype:        "posterior pelvic shift",
		Description:    "Pelvis displaced anteriorly relative to the trunk with a long kyphotic curve and posterior trunk lean.",
		MusculoskeletalImplications: []string{
			"Shortened hamstrings and upper abdominal wall",
			"Lengthened hip flexors and lower abdominals",
			"Anterior hip joint loading in standing",
		},
		CompensatoryPatterns: []string{
			"Hanging on the iliofemoral ligaments in standing",
			"Cervical extension to level the gaze",
		},
		ClinicalSymptoms: []string{
			"Anterior hip pinching",
			"Diffuse low back ache after standing",
		},
		ExerciseRecommendations: ExercisePlan{
			Stretching: []string{
				"Hamstring stretching",
				"Thoracolumbar mobility work",
			},
			Strengthening: []string{
				"Hip flexor strengthening in shortened range",
				"Lower abdominal control drills",
			},
			Postural: []string{
				"Stand with weight centered over the mid-foot",
			},
		},
		ErgonomicConsiderations: []string{
			"Avoid prolonged slumped standing against counters",
		},
		Prognosis: PrognosisGuarded,
	},
	SyndromeScoliotic: {
		Classification: SyndromeScoliotic,
		Description:    "Frontal-plane asymmetry of the trunk with lateral spinal deviation and uneven shoulder or pelvic levels.",
		MusculoskeletalImplications: []string{
			"Asymmetric paraspinal muscle loading",
			"Unequal rib cage mechanics",
			"Pelvic obliquity altering lower limb loading",
		},
		CompensatoryPatterns: []string{
			"Contralateral trunk lean during gait",
			"Asymmetric arm swing",
		},
		ClinicalSymptoms: []string{
			"Unilateral paraspinal fatigue",
			"Asymmetric belt line or sleeve length awareness",
		},
		ExerciseRecommendations: ExercisePlan{
			Stretching: []string{
				"Side-bending stretch toward the convexity",
				"Latissimus stretch on the concave side",
			},
			Strengthening: []string{
				"Side plank biased to the convex side",
				"Unilateral carry variations",
			},
			Postural: []string{
				"Symmetric stance habit training",
			},
		},
		ErgonomicConsiderations: []string{
			"Avoid habitual single-shoulder bag carriage",
			"Referral for clinical scoliosis screening when persistent",
		},
		Prognosis: PrognosisGuarded,
	},
}
