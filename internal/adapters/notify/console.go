package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/alejandrodnm/poolsim/internal/domain"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

// familyTitles en el orden en que se imprimen.
var familyTitles = []struct {
	family string
	title  string
}{
	{domain.FamilyNoFee, "Probabilities (No Fee)"},
	{domain.FamilyFee, "Probabilities (With Fee)"},
	{domain.FamilyCombined, "Probabilities (Pool > Reference+Pool with Fee)"},
}

// Console implementa ports.Reporter.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un reporter que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un reporter para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Report imprime el resultado en el modo configurado.
func (c *Console) Report(_ context.Context, r domain.Report) error {
	fmt.Fprintf(c.out, "\n[%s] run %s | seed %d, %s trials, mode %s (%s)\n",
		r.CreatedAt.Format("15:04:05"), shortID(r.RunID), r.Seed, humanize.Comma(int64(r.TrialCount)), r.Mode, r.Duration.Round(1e6))

	if c.table {
		c.printSample(r.Sample)
		c.printScenarios(r)
		c.printProbabilityTables(r)
	} else {
		c.printCompact(r)
	}
	c.printFailures(r.Failures)
	return nil
}

// printCompact imprime una línea por comparación.
func (c *Console) printCompact(r domain.Report) {
	for _, ft := range familyTitles {
		rows := r.ByFamily(ft.family)
		if len(rows) == 0 {
			continue
		}
		fmt.Fprintf(c.out, "\n--- %s ---\n", ft.title)
		for _, cr := range rows {
			if cr.Skipped {
				fmt.Fprintf(c.out, "%s vs %s: skipped (%s)\n", cr.CandidateID, cr.ReferenceID, cr.Reason)
				continue
			}
			fmt.Fprintf(c.out, "Pool with %d validators beats %s: %.2f%% chance\n",
				cr.PoolSize, cr.ReferenceID, cr.Probability*100)
		}
	}
}

// printSample imprime tamaño, media y reparto por buckets de la muestra.
func (c *Console) printSample(s domain.SampleStats) {
	fmt.Fprintf(c.out, "\n  Sample: %s blocks | mean %.6f ETH | median %.6f ETH\n", humanize.Comma(int64(s.Size)), s.Mean, s.Median)

	tbl := tablewriter.NewWriter(c.out)
	tbl.Header("Bucket", "Total ETH", "Share")
	tbl.Append("≥1 ETH", fmt.Sprintf("%.4f", s.Buckets.High), pct(s.Buckets.ShareHigh))
	tbl.Append("0.1–1 ETH", fmt.Sprintf("%.4f", s.Buckets.Medium), pct(s.Buckets.ShareMedium))
	tbl.Append("<0.1 ETH", fmt.Sprintf("%.4f", s.Buckets.Low), pct(s.Buckets.ShareLow))
	tbl.Render()
}

// printScenarios imprime el resumen de cada distribución simulada.
func (c *Console) printScenarios(r domain.Report) {
	if len(r.Scenarios) == 0 {
		return
	}

	tbl := tablewriter.NewWriter(c.out)
	tbl.Header("Scenario", "Validators", "Blocks", "Fee", "Mean", "Median", "P10", "P90", "StdDev")
	for _, id := range sortedScenarioIDs(r.Scenarios) {
		sc := r.Scenarios[id]
		fee := "-"
		if sc.Spec.HasFee() {
			fee = fmt.Sprintf("%.2f", sc.Spec.FeeMultiplier)
		}
		tbl.Append(
			id,
			fmt.Sprintf("%d", sc.Spec.EffectiveCount()),
			humanize.Comma(int64(sc.BlockCount)),
			fee,
			fmt.Sprintf("%.6f", sc.Summary.Mean),
			fmt.Sprintf("%.6f", sc.Summary.Median),
			fmt.Sprintf("%.6f", sc.Summary.P10),
			fmt.Sprintf("%.6f", sc.Summary.P90),
			fmt.Sprintf("%.6f", sc.Summary.StdDev),
		)
	}
	tbl.Render()
}

// printProbabilityTables imprime una tabla por familia de comparación.
func (c *Console) printProbabilityTables(r domain.Report) {
	for _, ft := range familyTitles {
		rows := r.ByFamily(ft.family)
		if len(rows) == 0 {
			continue
		}

		fmt.Fprintf(c.out, "\n=== %s ===\n", ft.title)
		tbl := tablewriter.NewWriter(c.out)
		tbl.Header("Pool", "Candidate", "Reference", "P(beats)")
		for _, cr := range rows {
			prob := pct(cr.Probability)
			if cr.Skipped {
				prob = "skipped"
			}
			tbl.Append(fmt.Sprintf("%d", cr.PoolSize), cr.CandidateID, cr.ReferenceID, prob)
		}
		tbl.Render()
	}
}

func (c *Console) printFailures(failures map[string]string) {
	if len(failures) == 0 {
		return
	}
	ids := make([]string, 0, len(failures))
	for id := range failures {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Fprintf(c.out, "\n  ⚠ %d scenario(s) failed:\n", len(failures))
	for _, id := range ids {
		fmt.Fprintf(c.out, "  !! %s: %s\n", id, failures[id])
	}
}

// PrintRuns imprime el historial de corridas guardadas.
func (c *Console) PrintRuns(runs []domain.RunRecord) {
	if len(runs) == 0 {
		fmt.Fprintln(c.out, "\n  No runs stored yet. Run without -history first.")
		return
	}

	tbl := tablewriter.NewWriter(c.out)
	tbl.Header("Run", "Date", "Seed", "Trials", "Mode", "Sample", "Cmp", "Fail")
	for _, r := range runs {
		tbl.Append(
			shortID(r.RunID),
			r.CreatedAt.Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", r.Seed),
			humanize.Comma(int64(r.TrialCount)),
			string(r.Mode),
			humanize.Comma(int64(r.SampleSize)),
			fmt.Sprintf("%d", r.Comparisons),
			fmt.Sprintf("%d", r.Failures),
		)
	}
	tbl.Render()
}

// sortedScenarioIDs ordena por tamaño efectivo y luego por id.
func sortedScenarioIDs(m map[string]domain.ScenarioSummary) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := m[ids[i]].Spec.EffectiveCount(), m[ids[j]].Spec.EffectiveCount()
		if a != b {
			return a < b
		}
		return ids[i] < ids[j]
	})
	return ids
}

func pct(f float64) string {
	return fmt.Sprintf("%.2f%%", f*100)
}

func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
