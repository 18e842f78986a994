package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// jsonLines decodes every JSON record written to buf.
func jsonLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var records []map[string]any

	scanner := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	for scanner.Scan() {
		var record map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &record), "line: %s", scanner.Text())
		records = append(records, record)
	}
	require.NoError(t, scanner.Err())

	return records
}

// onlyLine decodes buf and requires exactly one record.
func onlyLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	records := jsonLines(t, buf)
	require.Len(t, records, 1)

	return records[0]
}
