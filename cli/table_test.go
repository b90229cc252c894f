package cli

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aquagrade/models"
)

var ansi = regexp.MustCompile("\x1b\\[[0-9;]*m")

func TestWriteTable_AlignsColoredColumns(t *testing.T) {
	saved := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = saved })

	var buf bytes.Buffer
	writeTable(&buf, []string{"ID", "GRADE", "VALUE"}, [][]cell{
		{plain("a"), colored(gradeColor(models.GradeSushi), models.GradeSushi), plain("10.00")},
		{plain("bb"), colored(gradeColor("Poor"), "Poor"), plain("7.50")},
	})

	out := buf.String()
	assert.Contains(t, out, "\x1b[", "colors should be emitted")

	lines := strings.Split(strings.TrimRight(ansi.ReplaceAllString(out, ""), "\n"), "\n")
	require.Len(t, lines, 4)

	gradeAt := strings.Index(lines[0], "GRADE")
	valueAt := strings.Index(lines[0], "VALUE")
	assert.Equal(t, gradeAt, strings.Index(lines[2], "Sushi-Grade"))
	assert.Equal(t, gradeAt, strings.Index(lines[3], "Poor"))
	assert.Equal(t, valueAt, strings.Index(lines[2], "10.00"))
	assert.Equal(t, valueAt, strings.Index(lines[3], "7.50"))
	assert.Equal(t, "--  -----        -----", lines[1])
}
