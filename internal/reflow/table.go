package reflow

import "strings"

// detectGrid 判定一个块是否为表格并解析
// 每个非空行都含竖线分隔 → 网格（首行为表头）；
// 行数为偶数且大于 2 → 交替键/值对；否则不是表格
func detectGrid(block string) *Grid {
	lines := nonEmptyLines(block)
	if len(lines) == 0 {
		return nil
	}

	if allPipeDelimited(lines) {
		rows := make([][]string, 0, len(lines))
		for _, line := range lines {
			rows = append(rows, splitPipeRow(line))
		}
		grid := &Grid{Header: rows[0]}
		if len(rows) > 1 {
			grid.Rows = rows[1:]
		}
		return grid
	}

	if len(lines) > 2 && len(lines)%2 == 0 {
		grid := &Grid{KeyValue: true}
		for i := 0; i < len(lines); i += 2 {
			grid.Rows = append(grid.Rows, []string{lines[i], lines[i+1]})
		}
		return grid
	}

	return nil
}

func nonEmptyLines(block string) []string {
	var out []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func allPipeDelimited(lines []string) bool {
	for _, line := range lines {
		if !strings.Contains(line, "|") {
			return false
		}
	}
	return true
}

func splitPipeRow(line string) []string {
	var cells []string
	for _, c := range strings.Split(line, "|") {
		c = strings.TrimSpace(c)
		if c != "" {
			cells = append(cells, c)
		}
	}
	return cells
}
