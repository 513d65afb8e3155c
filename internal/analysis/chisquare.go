package analysis

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"statdash/domain/core"
	"statdash/domain/table"

	"gonum.org/v1/gonum/stat/distuv"
)

// ChiSquare runs a chi-square test of independence on a contingency table of counts.
// Yates' continuity correction is applied when the table has one degree of freedom.
func ChiSquare(observed [][]float64) (*ChiSquareResult, error) {
	rows := len(observed)
	if rows == 0 || len(observed[0]) == 0 {
		return nil, core.NewComputationError(string(ProcChiSquare), "contingency table is empty", nil)
	}
	cols := len(observed[0])

	rowSums := make([]float64, rows)
	colSums := make([]float64, cols)
	total := 0.0
	for i, row := range observed {
		if len(row) != cols {
			return nil, core.NewComputationError(string(ProcChiSquare),
				fmt.Sprintf("row %d has %d cells, expected %d", i+1, len(row), cols), nil)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, core.NewComputationError(string(ProcChiSquare),
					fmt.Sprintf("cell (%d,%d) is not a finite count", i+1, j+1), nil)
			}
			if v < 0 {
				return nil, core.NewComputationError(string(ProcChiSquare),
					fmt.Sprintf("cell (%d,%d) is negative", i+1, j+1), nil)
			}
			rowSums[i] += v
			colSums[j] += v
			total += v
		}
	}

	expected := make([][]float64, rows)
	for i := range expected {
		expected[i] = make([]float64, cols)
		for j := range expected[i] {
			e := rowSums[i] * colSums[j] / total
			if !(e > 0) {
				return nil, core.NewComputationError(string(ProcChiSquare),
					"contingency table has a zero expected frequency", nil)
			}
			expected[i][j] = e
		}
	}

	df := (rows - 1) * (cols - 1)
	result := &ChiSquareResult{
		DF:       df,
		Observed: observed,
		Expected: expected,
	}
	if df == 0 {
		result.Chi2 = 0
		result.P = 1
		return result, nil
	}

	result.Yates = df == 1
	chi2 := 0.0
	for i := range observed {
		for j, o := range observed[i] {
			e := expected[i][j]
			if result.Yates {
				diff := e - o
				o += math.Copysign(math.Min(0.5, math.Abs(diff)), diff)
			}
			chi2 += (o - e) * (o - e) / e
		}
	}
	result.Chi2 = chi2
	result.P = distuv.ChiSquared{K: float64(df)}.Survival(chi2)
	return result, nil
}

// ChiSquareFromColumns cross-tabulates two columns by their raw values and tests the
// resulting table. Rows where either cell is missing are dropped.
func ChiSquareFromColumns(a, b *table.Column) (*ChiSquareResult, error) {
	rowIndex := map[string]int{}
	colIndex := map[string]int{}
	type pair struct{ r, c string }
	var pairs []pair

	n := a.Len()
	if b.Len() < n {
		n = b.Len()
	}
	for i := 0; i < n; i++ {
		if table.IsMissing(a.Raw[i]) || table.IsMissing(b.Raw[i]) {
			continue
		}
		r, c := strings.TrimSpace(a.Raw[i]), strings.TrimSpace(b.Raw[i])
		rowIndex[r] = 0
		colIndex[c] = 0
		pairs = append(pairs, pair{r, c})
	}
	if len(pairs) == 0 {
		return nil, core.NewComputationError(string(ProcChiSquare), "no rows with both values present", nil)
	}

	rowLabels := sortedLabels(rowIndex)
	colLabels := sortedLabels(colIndex)
	observed := make([][]float64, len(rowLabels))
	for i := range observed {
		observed[i] = make([]float64, len(colLabels))
	}
	for _, p := range pairs {
		observed[rowIndex[p.r]][colIndex[p.c]]++
	}

	result, err := ChiSquare(observed)
	if err != nil {
		return nil, err
	}
	result.RowLabels = rowLabels
	result.ColLabels = colLabels
	return result, nil
}

// ParseContingency reads a grid of cell strings as counts. Blank cells are zero;
// any other non-numeric cell is an error.
func ParseContingency(cells [][]string) ([][]float64, error) {
	out := make([][]float64, len(cells))
	for i, row := range cells {
		out[i] = make([]float64, len(row))
		for j, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, core.NewComputationError(string(ProcChiSquare),
					fmt.Sprintf("cell (%d,%d) %q is not a number", i+1, j+1, cell), err)
			}
			out[i][j] = v
		}
	}
	return out, nil
}

// sortedLabels orders labels numerically when all parse as numbers, else lexically,
// and stores each label's position back into index.
func sortedLabels(index map[string]int) []string {
	labels := make([]string, 0, len(index))
	numeric := true
	for l := range index {
		labels = append(labels, l)
		if _, err := strconv.ParseFloat(l, 64); err != nil {
			numeric = false
		}
	}
	sort.Slice(labels, func(i, j int) bool {
		if numeric {
			x, _ := strconv.ParseFloat(labels[i], 64)
			y, _ := strconv.ParseFloat(labels[j], 64)
			return x < y
		}
		return labels[i] < labels[j]
	})
	for i, l := range labels {
		index[l] = i
	}
	return labels
}
