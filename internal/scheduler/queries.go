package scheduler

// countryQueries holds the default sync query lists per market, used when
// neither the configuration nor the request names queries. Lists lean on
// the roles each market posts in volume.
var countryQueries = map[string][]string{
	"IN": {
		"software developer", "software engineer", "full stack developer",
		"data analyst", "data scientist", "product manager", "business analyst",
		"digital marketing", "sales executive", "accountant", "HR manager",
	},
	"US": {
		"software engineer", "data scientist", "product manager",
		"DevOps engineer", "UX designer", "account executive",
		"financial analyst", "registered nurse",
	},
	"GB": {
		"software developer", "data analyst", "project manager",
		"DevOps engineer", "marketing executive", "accountant",
	},
	"AE": {
		"software engineer", "business analyst", "sales executive",
		"civil engineer", "accountant", "hospitality manager",
	},
	"CA": {
		"software developer", "data scientist", "product manager",
		"marketing specialist", "financial analyst",
	},
	"AU": {
		"software engineer", "data analyst", "product manager",
		"sales consultant", "registered nurse",
	},
}

var genericQueries = []string{"software engineer", "developer"}

// queryVariants widens a base query with the alternate form boards index
// separately.
func queryVariants(base string) []string {
	if base == "" {
		return genericQueries
	}
	return []string{base, base + " jobs"}
}

// queriesFor resolves the query list for one country. Planned queries win
// untouched; defaults are expanded into their variants and deduplicated.
func queriesFor(country string, planned []string) []string {
	if len(planned) > 0 {
		return planned
	}

	base, ok := countryQueries[country]
	if !ok {
		base = genericQueries
	}

	seen := make(map[string]struct{})
	var out []string
	for _, q := range base {
		for _, v := range queryVariants(q) {
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
