package ui

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	minGridSize = 2
	maxGridSize = 10
)

type chiSquarePage struct {
	Rows      int
	Cols      int
	Cells     [][]string
	RowLabels []string
	ColLabels []string
	Result    *resultView
	Error     string
}

func gridSize(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil || n < minGridSize {
		return minGridSize
	}
	if n > maxGridSize {
		return maxGridSize
	}
	return n
}

func newChiSquarePage(rows, cols int) chiSquarePage {
	page := chiSquarePage{
		Rows:      rows,
		Cols:      cols,
		Cells:     make([][]string, rows),
		RowLabels: make([]string, rows),
		ColLabels: make([]string, cols),
	}
	for i := range page.Cells {
		page.Cells[i] = make([]string, cols)
		page.RowLabels[i] = fmt.Sprintf("Row %d", i+1)
	}
	for j := range page.ColLabels {
		page.ColLabels[j] = fmt.Sprintf("Column %d", j+1)
	}
	return page
}

func (s *Server) handleChiSquareForm(c *gin.Context) {
	s.sessionFor(c)
	page := newChiSquarePage(gridSize(c.Query("rows")), gridSize(c.Query("cols")))
	s.renderTemplate(c, http.StatusOK, "chisquare.html", page)
}

func (s *Server) handleChiSquare(c *gin.Context) {
	sess := s.sessionFor(c)
	page := newChiSquarePage(gridSize(c.PostForm("rows")), gridSize(c.PostForm("cols")))

	for i := 0; i < page.Rows; i++ {
		if l := c.PostForm(fmt.Sprintf("row_%d", i)); l != "" {
			page.RowLabels[i] = l
		}
		for j := 0; j < page.Cols; j++ {
			page.Cells[i][j] = c.PostForm(fmt.Sprintf("cell_%d_%d", i, j))
		}
	}
	for j := 0; j < page.Cols; j++ {
		if l := c.PostForm(fmt.Sprintf("col_%d", j)); l != "" {
			page.ColLabels[j] = l
		}
	}

	// resizing keeps the entered cells and skips the test
	if c.PostForm("action") == "resize" {
		s.renderTemplate(c, http.StatusOK, "chisquare.html", page)
		return
	}

	p, err := s.service.ChiSquareGrid(c.Request.Context(), sess.ID.String(), page.Cells, page.RowLabels, page.ColLabels)
	if err != nil {
		page.Error = s.userMessage(err)
	} else {
		page.Result = newResultView(p, false)
	}
	s.renderTemplate(c, http.StatusOK, "chisquare.html", page)
}
