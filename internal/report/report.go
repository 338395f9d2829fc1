// Package report renders computation results for the console, for
// machine consumption and as an HTML chart.
package report

import (
	"sort"

	"github.com/Sumatoshi-tech/truckfactor/internal/factor"
	"github.com/Sumatoshi-tech/truckfactor/internal/runner"
)

// Contributor is one selected identity in a rendered report.
type Contributor struct {
	Identity string  `json:"identity" yaml:"identity"`
	Value    float64 `json:"value"    yaml:"value"`
	Share    float64 `json:"share"    yaml:"share"`
}

// Document is the serializable form of a computation result.
type Document struct {
	Metric       string        `json:"metric"        yaml:"metric"`
	CriticalLoss float64       `json:"critical_loss" yaml:"critical_loss"`
	Reference    string        `json:"reference"     yaml:"reference"`
	Files        int           `json:"files"         yaml:"files"`
	TruckFactor  int           `json:"truck_factor"  yaml:"truck_factor"`
	Contributors []Contributor `json:"contributors"  yaml:"contributors"`

	// Alternate is the ranking over the metric that was not selected,
	// so one document carries both lists.
	Alternate *Ranking `json:"alternate,omitempty" yaml:"alternate,omitempty"`
}

// Ranking is one ranked truck-factor list.
type Ranking struct {
	Metric       string        `json:"metric"       yaml:"metric"`
	TruckFactor  int           `json:"truck_factor" yaml:"truck_factor"`
	Contributors []Contributor `json:"contributors" yaml:"contributors"`
}

// NewDocument flattens a result into its serializable form.
func NewDocument(result *runner.Result) Document {
	doc := Document{
		Metric:       result.Metric,
		CriticalLoss: result.CriticalLoss,
		Reference:    result.Reference.Format("2006-01-02"),
		Files:        result.Files,
		TruckFactor:  result.TruckFactor(),
		Contributors: contributors(result.Entries),
	}

	if len(result.Alternate) > 0 {
		doc.Alternate = &Ranking{
			Metric:       result.AlternateMetric(),
			TruckFactor:  len(result.Alternate),
			Contributors: contributors(result.Alternate),
		}
	}

	return doc
}

func contributors(entries []factor.Entry) []Contributor {
	list := make([]Contributor, 0, len(entries))

	for _, entry := range entries {
		share := 0.0
		if entry.Total > 0 {
			share = entry.Value / entry.Total
		}

		list = append(list, Contributor{
			Identity: entry.Identity,
			Value:    entry.Value,
			Share:    share,
		})
	}

	return list
}

// knowledgeRanking returns every identity with its knowledge value,
// largest first, ties broken by identity.
func knowledgeRanking(result *runner.Result) []Contributor {
	ranking := make([]Contributor, 0, len(result.Tallies.Knowledge))

	total := result.Tallies.TotalKnowledge()

	for identity, value := range result.Tallies.Knowledge {
		share := 0.0
		if total > 0 {
			share = value / total
		}

		ranking = append(ranking, Contributor{Identity: identity, Value: value, Share: share})
	}

	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Value != ranking[j].Value {
			return ranking[i].Value > ranking[j].Value
		}

		return ranking[i].Identity < ranking[j].Identity
	})

	return ranking
}
