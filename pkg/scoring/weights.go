package scoring

// CardArrhColumn is the optional cardiac arrhythmia indicator column. It is
// not part of the required set: sid_29 has no weight for it and the other two
// methods only count it on request.
const CardArrhColumn = "CARDARRH"

// cardArrhDesc is the human-readable description of the optional column.
const cardArrhDesc = "Cardiac arrhythmias"

// comorbidity is one required indicator column: its HCUP name, description,
// and the weight it carries under each method.
type comorbidity struct {
	name  string
	desc  string
	vw    int // van_walraven
	sid30 int
	sid29 int
}

// comorbidities is the fixed set of 29 required indicator columns, in HCUP
// naming order. Zero weights are listed explicitly: the column is required
// and validated even where it does not contribute to a method's score.
var comorbidities = []comorbidity{
	{"AIDS", "Acquired immune deficiency syndrome", 0, 0, 0},
	{"ALCOHOL", "Alcohol abuse", 0, 0, -2},
	{"ANEMDEF", "Deficiency anemias", -2, 0, 0},
	{"ARTH", "Rheumatoid arthritis/collagen vascular diseases", 0, 0, 0},
	{"BLDLOSS", "Chronic blood loss anemia", -2, -3, -2},
	{"CHF", "Congestive heart failure", 7, 9, 9},
	{"CHRNLUNG", "Chronic pulmonary disease", 3, 3, 3},
	{"COAG", "Coagulopathy", 3, 12, 9},
	{"DEPRESS", "Depression", -3, -5, -4},
	{"DM", "Diabetes without chronic complications", 0, 1, 0},
	{"DMCX", "Diabetes with chronic complications", 0, 0, -1},
	{"DRUG", "Drug abuse", -7, -11, -8},
	{"HTN_C", "Hypertension (complicated and uncomplicated)", 0, -2, -1},
	{"HYPOTHY", "Hypothyroidism", 0, 0, 0},
	{"LIVER", "Liver disease", 11, 7, 5},
	{"LYMPH", "Lymphoma", 9, 8, 6},
	{"LYTES", "Fluid and electrolyte disorders", 5, 11, 9},
	{"METS", "Metastatic cancer", 12, 17, 13},
	{"NEURO", "Other neurological disorders", 6, 5, 4},
	{"OBESE", "Obesity", -4, -5, -4},
	{"PARA", "Paralysis", 7, 4, 3},
	{"PERIVASC", "Peripheral vascular disorders", 2, 4, 4},
	{"PSYCH", "Psychoses", 0, -6, -4},
	{"PULMCIRC", "Pulmonary circulation disorders", 4, 5, 5},
	{"RENLFAIL", "Renal failure", 5, 7, 6},
	{"TUMOR", "Solid tumor without metastasis", 4, 10, 8},
	{"ULCER", "Peptic ulcer disease excluding bleeding", 0, 0, 0},
	{"VALVE", "Valvular disease", -1, 0, 0},
	{"WGHTLOSS", "Weight loss", 6, 10, 8},
}

// cardArrhWeights holds the extra weight applied to the optional cardiac
// arrhythmia indicator. sid_29 deliberately has no entry.
var cardArrhWeights = map[Method]int{
	MethodVanWalraven: 5,
	MethodSID30:       8,
}

func (c comorbidity) weight(m Method) int {
	switch m {
	case MethodSID30:
		return c.sid30
	case MethodSID29:
		return c.sid29
	default:
		return c.vw
	}
}

// Columns returns the names of the 29 required indicator columns in
// canonical order.
func Columns() []string {
	cols := make([]string, len(comorbidities))
	for i, c := range comorbidities {
		cols[i] = c.name
	}
	return cols
}

// Describe returns the human-readable description of an indicator column,
// including the optional cardiac arrhythmia column. Unknown names return an
// empty string.
func Describe(column string) string {
	if column == CardArrhColumn {
		return cardArrhDesc
	}
	for _, c := range comorbidities {
		if c.name == column {
			return c.desc
		}
	}
	return ""
}

// Weight returns the weight a single indicator carries under the given
// method. The optional cardiac arrhythmia column is included for the methods
// that define it.
func Weight(m Method, column string) (int, bool) {
	if !m.valid() {
		return 0, false
	}
	if column == CardArrhColumn {
		w, ok := cardArrhWeights[m]
		return w, ok
	}
	for _, c := range comorbidities {
		if c.name == column {
			return c.weight(m), true
		}
	}
	return 0, false
}
