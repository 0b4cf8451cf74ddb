package classifier

// departmentInfo is one entry in the static category directory that
// routes a grievance to the responsible government office.
type departmentInfo struct {
	Category   string // display name
	Level      string // government tier: Local, Provincial, Federal
	Department string
	SLAHours   int
}

// category pairs a key with its keyword list. Categories are scored in
// slice order; the first category keeps a tied score.
type category struct {
	Key      string
	Keywords []string
}

// categories is the fixed classification table. Keyword lists mix
// English and romanized Nepali terms citizens actually type.
var categories = []category{
	{Key: "corruption", Keywords: []string{
		"corruption", "bribery", "bribe", "tender", "procurement", "fraud",
		"nepotism", "kickback", "embezzlement", "scam", "rigging", "misuse", "ghost",
	}},
	{Key: "electricity", Keywords: []string{
		"electricity", "power", "load shedding", "transformer", "voltage",
		"meter", "nea", "blackout", "outage", "wire", "pole", "sparking", "bijuli",
	}},
	{Key: "water", Keywords: []string{
		"water", "supply", "pipe", "tank", "drinking", "dhara", "khanepani",
		"sewage", "drainage", "tap", "contaminated",
	}},
	{Key: "road", Keywords: []string{
		"road", "pothole", "bridge", "footpath", "highway", "crack",
		"pavement", "traffic", "construction", "sadak", "bato",
	}},
	{Key: "law", Keywords: []string{
		"police", "crime", "theft", "robbery", "assault", "harassment",
		"violence", "murder", "threat", "kidnap", "drug",
	}},
	{Key: "health", Keywords: []string{
		"hospital", "health", "medicine", "doctor", "clinic", "disease",
		"ambulance", "pharmacy", "vaccine", "sanitation",
	}},
	{Key: "environment", Keywords: []string{
		"garbage", "waste", "pollution", "noise", "smoke", "deforestation",
		"dumping", "plastic", "fohor", "foul smell",
	}},
	{Key: "education", Keywords: []string{
		"school", "education", "teacher", "college", "university", "exam",
		"scholarship", "student", "admission",
	}},
}

// urgencyKeywords flag life-or-property emergencies regardless of category.
var urgencyKeywords = []string{
	"death", "dead", "dying", "collapse", "fire", "electrocution", "flood",
	"landslide", "earthquake", "emergency", "danger", "explosion", "explode",
	"exploded", "trapped",
	"drowning", "fatal", "critical", "severe", "urgent",
}

// departments routes each category key to its responsible office.
// Unknown keys fall back to the "other" entry.
var departments = map[string]departmentInfo{
	"corruption": {
		Category:   "Corruption & Governance",
		Level:      "Federal",
		Department: "Commission for the Investigation of Abuse of Authority",
		SLAHours:   168,
	},
	"electricity": {
		Category:   "Electricity & Power",
		Level:      "Federal",
		Department: "Nepal Electricity Authority",
		SLAHours:   24,
	},
	"water": {
		Category:   "Water Supply & Sanitation",
		Level:      "Local",
		Department: "Department of Water Supply and Sewerage Management",
		SLAHours:   48,
	},
	"road": {
		Category:   "Roads & Infrastructure",
		Level:      "Provincial",
		Department: "Department of Roads",
		SLAHours:   72,
	},
	"law": {
		Category:   "Law & Order",
		Level:      "Federal",
		Department: "Nepal Police",
		SLAHours:   24,
	},
	"health": {
		Category:   "Health Services",
		Level:      "Provincial",
		Department: "Ministry of Health and Population",
		SLAHours:   48,
	},
	"environment": {
		Category:   "Environment & Waste",
		Level:      "Local",
		Department: "Municipal Environment Division",
		SLAHours:   72,
	},
	"education": {
		Category:   "Education",
		Level:      "Federal",
		Department: "Ministry of Education, Science and Technology",
		SLAHours:   120,
	},
	"other": {
		Category:   "General Grievance",
		Level:      "Local",
		Department: "Municipal Administration Office",
		SLAHours:   72,
	},
}
