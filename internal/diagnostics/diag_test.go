package diagnostics

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilSinkIgnoresPush(t *testing.T) {
	var s Sink
	assert.NotPanics(t, func() { s.Push(Diagnostic{Code: TestDone}) })
}

func TestSinkForwards(t *testing.T) {
	var got []Diagnostic
	s := Sink(func(d Diagnostic) { got = append(got, d) })
	s.Push(Diagnostic{Severity: Info, Code: TestRunning})
	require.Len(t, got, 1)
	assert.Equal(t, TestRunning, got[0].Code)
}

func TestWriteFailedJSON(t *testing.T) {
	b, err := json.Marshal(WriteFailed(errors.New("spi: no such device")))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "error", m["severity"])
	assert.Equal(t, DriverWrite, m["code"])
	assert.Equal(t, "spi: no such device", m["detail"])
	assert.NotContains(t, m, "evidence")
}

func TestFallbackNamesRequestedDriver(t *testing.T) {
	d := Fallback("spi", errors.New("no SPI port found"))
	assert.Equal(t, Warn, d.Severity)
	assert.Equal(t, DriverFallback, d.Code)
	assert.Equal(t, "no SPI port found", d.Detail)
	assert.Equal(t, "spi", d.Evidence["requested"])
}
