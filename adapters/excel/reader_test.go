package excel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCSVWithUnits(t *testing.T) {
	path := writeTempCSV(t, "Temperature (C),Yield (%),Notes\n25,80.5,ok\n30,85,\n")

	reader := NewDataReader(path)
	data, err := reader.ReadData()
	require.NoError(t, err)

	require.Len(t, data.Parameters, 3)
	assert.Equal(t, "Temperature", data.Parameters[0].Name)
	assert.Equal(t, "C", data.Parameters[0].Unit)
	assert.Equal(t, "Yield", data.Parameters[1].Name)
	assert.Equal(t, "%", data.Parameters[1].Unit)
	assert.Equal(t, "Notes", data.Parameters[2].Name)
	assert.Equal(t, "", data.Parameters[2].Unit)

	require.Len(t, data.Rows, 2)
	assert.Equal(t, 25.0, data.Rows[0]["Temperature"])
	assert.Equal(t, 80.5, data.Rows[0]["Yield"])
	assert.Equal(t, "ok", data.Rows[0]["Notes"])
}

func TestReadCSVOmitsEmptyCells(t *testing.T) {
	path := writeTempCSV(t, "A,B\n1,\n,2\n")

	data, err := NewDataReader(path).ReadData()
	require.NoError(t, err)

	require.Len(t, data.Rows, 2)
	_, hasB := data.Rows[0]["B"]
	assert.False(t, hasB)
	_, hasA := data.Rows[1]["A"]
	assert.False(t, hasA)
	assert.Equal(t, 2.0, data.Rows[1]["B"])
}

func TestReadCSVRaggedRows(t *testing.T) {
	path := writeTempCSV(t, "A,B,C\n1,2\n3,4,5,6\n")

	data, err := NewDataReader(path).ReadData()
	require.NoError(t, err)

	require.Len(t, data.Rows, 2)
	assert.Equal(t, 2.0, data.Rows[0]["B"])
	_, hasC := data.Rows[0]["C"]
	assert.False(t, hasC)
	assert.Equal(t, 5.0, data.Rows[1]["C"])
}

func TestReadCSVHeaderOnly(t *testing.T) {
	path := writeTempCSV(t, "A,B\n")

	_, err := NewDataReader(path).ReadData()
	assert.Error(t, err)
}

func TestReadMissingFile(t *testing.T) {
	_, err := NewDataReader(filepath.Join(t.TempDir(), "absent.csv")).ReadData()
	assert.Error(t, err)
}

func TestSplitHeader(t *testing.T) {
	cases := []struct {
		in, name, unit string
	}{
		{"Temperature (C)", "Temperature", "C"},
		{"Pressure(kPa)", "Pressure", "kPa"},
		{"pH", "pH", ""},
		{"(unit only)", "(unit only)", ""},
		{"  Yield ( % ) ", "Yield", "%"},
	}
	for _, tc := range cases {
		name, unit := splitHeader(tc.in)
		assert.Equal(t, tc.name, name, tc.in)
		assert.Equal(t, tc.unit, unit, tc.in)
	}
}
