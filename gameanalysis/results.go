package gameanalysis

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/samber/lo"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/domino14/quantik/stats"
)

var ErrNoData = errors.New("no data for that depth")

// DepthStats holds the results for one depth. Counts of moves, wins and
// ongoing games are weighted by multiplicity, so they count raw positions,
// not canonical classes.
type DepthStats struct {
	Depth           int           `yaml:"depth"`
	TotalLegalMoves uint64        `yaml:"total_legal_moves"`
	UniqueCanonical uint64        `yaml:"unique_canonical_states"`
	Player0Wins     uint64        `yaml:"player_0_wins"`
	Player1Wins     uint64        `yaml:"player_1_wins"`
	Ongoing         uint64        `yaml:"ongoing_games"`
	Branching       stats.Summary `yaml:"branching_factor"`
	BranchingStdErr float64       `yaml:"branching_factor_stderr"`

	multiplicities []float64
}

// CumulativeStats sums DepthStats over all depths.
type CumulativeStats struct {
	TotalLegalMoves uint64 `yaml:"total_legal_moves"`
	UniqueCanonical uint64 `yaml:"unique_canonical_states"`
	Player0Wins     uint64 `yaml:"player_0_wins"`
	Player1Wins     uint64 `yaml:"player_1_wins"`
	Ongoing         uint64 `yaml:"ongoing_games"`
}

func (c *CumulativeStats) add(d DepthStats) {
	c.TotalLegalMoves += d.TotalLegalMoves
	c.UniqueCanonical += d.UniqueCanonical
	c.Player0Wins += d.Player0Wins
	c.Player1Wins += d.Player1Wins
	c.Ongoing += d.Ongoing
}

func reductionFactor(total, unique uint64) float64 {
	if unique == 0 {
		return 0
	}
	return float64(total) / float64(unique)
}

func spaceSavings(total, unique uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(total-min(unique, total)) / float64(total) * 100
}

// ReductionFactor is legal moves per canonical class.
func (d DepthStats) ReductionFactor() float64 {
	return reductionFactor(d.TotalLegalMoves, d.UniqueCanonical)
}

// SpaceSavingsPercent is the share of legal moves that did not need a
// class of their own.
func (d DepthStats) SpaceSavingsPercent() float64 {
	return spaceSavings(d.TotalLegalMoves, d.UniqueCanonical)
}

func (c CumulativeStats) ReductionFactor() float64 {
	return reductionFactor(c.TotalLegalMoves, c.UniqueCanonical)
}

func (c CumulativeStats) SpaceSavingsPercent() float64 {
	return spaceSavings(c.TotalLegalMoves, c.UniqueCanonical)
}

// Table renders the results as markdown with thousands separators.
func (a *Analyzer) Table(header bool) string {
	p := message.NewPrinter(language.English)
	var sb strings.Builder
	if header {
		sb.WriteString("# Quantik Game Tree Analysis with Symmetry Reduction\n\n")
	}
	sb.WriteString("## Depth-wise Analysis\n")
	sb.WriteString("| Depth | Total Legal Moves | Unique Canonical | P0 Wins | P1 Wins | Ongoing | Reduction Factor | Space Savings |\n")
	sb.WriteString("|-------|-------------------|------------------|---------|---------|---------|------------------|---------------|\n")
	for _, d := range a.byDepth {
		sb.WriteString(p.Sprintf("| %5d | %17d | %16d | %7d | %7d | %7d | %15.2fx | %12.1f%% |\n",
			d.Depth, d.TotalLegalMoves, d.UniqueCanonical, d.Player0Wins, d.Player1Wins,
			d.Ongoing, d.ReductionFactor(), d.SpaceSavingsPercent()))
	}
	c := a.cum
	sb.WriteString("\n## Cumulative Analysis\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|--------|\n")
	sb.WriteString(p.Sprintf("| Total Legal Moves | %d |\n", c.TotalLegalMoves))
	sb.WriteString(p.Sprintf("| Unique Canonical States | %d |\n", c.UniqueCanonical))
	sb.WriteString(p.Sprintf("| Player 0 Wins | %d |\n", c.Player0Wins))
	sb.WriteString(p.Sprintf("| Player 1 Wins | %d |\n", c.Player1Wins))
	sb.WriteString(p.Sprintf("| Ongoing Games | %d |\n", c.Ongoing))
	sb.WriteString(p.Sprintf("| Overall Reduction Factor | %.2fx |\n", c.ReductionFactor()))
	sb.WriteString(p.Sprintf("| Overall Space Savings | %.1f%% |\n", c.SpaceSavingsPercent()))
	return sb.String()
}

type depthReport struct {
	DepthStats          `yaml:",inline"`
	ReductionFactor     float64 `yaml:"reduction_factor"`
	SpaceSavingsPercent float64 `yaml:"space_savings_percent"`
}

type cumulativeReport struct {
	CumulativeStats     `yaml:",inline"`
	ReductionFactor     float64 `yaml:"reduction_factor"`
	SpaceSavingsPercent float64 `yaml:"space_savings_percent"`
}

// Report is the exportable form of an analysis.
type Report struct {
	MaxDepth       int              `yaml:"max_depth"`
	Threads        int              `yaml:"threads"`
	ElapsedSeconds float64          `yaml:"elapsed_seconds"`
	Depths         []depthReport    `yaml:"depths"`
	Cumulative     cumulativeReport `yaml:"cumulative"`
}

func (a *Analyzer) Report() Report {
	return Report{
		MaxDepth:       a.cfg.MaxDepth,
		Threads:        a.cfg.Threads,
		ElapsedSeconds: a.elapsed.Seconds(),
		Depths: lo.Map(a.byDepth, func(d DepthStats, _ int) depthReport {
			return depthReport{d, d.ReductionFactor(), d.SpaceSavingsPercent()}
		}),
		Cumulative: cumulativeReport{a.cum, a.cum.ReductionFactor(), a.cum.SpaceSavingsPercent()},
	}
}

// YAML serializes the report.
func (r Report) YAML() ([]byte, error) {
	return yaml.Marshal(r)
}

// WriteHistogram prints a histogram of class multiplicities at depth.
func (a *Analyzer) WriteHistogram(w io.Writer, depth, bins, width int) error {
	ds, ok := a.StatsAtDepth(depth)
	if !ok || len(ds.multiplicities) == 0 {
		return fmt.Errorf("%w: %d", ErrNoData, depth)
	}
	h := histogram.Hist(bins, ds.multiplicities)
	return histogram.Fprint(w, h, histogram.Linear(width))
}
