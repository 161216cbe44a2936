package sheet

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/JonMunkholm/sheetorders/internal/config"
	"github.com/JonMunkholm/sheetorders/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSource_RequiresSheetID(t *testing.T) {
	_, err := NewSource(context.Background(), &config.Config{
		Sheet: config.SheetConfig{Backend: config.BackendCSV},
	})
	require.ErrorIs(t, err, core.ErrSheetNotConfigured)
}

func TestSource_Open(t *testing.T) {
	ctx := context.Background()
	csvPath := writeCSV(t, "Status\n")
	xlsxPath := writeWorkbook(t, "Orders", [][]string{{"Status"}})

	tests := []struct {
		name    string
		sheet   config.SheetConfig
		wantErr error
	}{
		{"csv", config.SheetConfig{ID: csvPath, Backend: config.BackendCSV}, nil},
		{"xlsx", config.SheetConfig{ID: xlsxPath, Worksheet: "Orders", Backend: "XLSX"}, nil},
		{"missing csv", config.SheetConfig{
			ID: filepath.Join(t.TempDir(), "nope.csv"), Backend: config.BackendCSV,
		}, core.ErrSourceUnavailable},
		{"missing worksheet", config.SheetConfig{
			ID: xlsxPath, Worksheet: "Pedidos", Backend: config.BackendXLSX,
		}, ErrWorksheetNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewSource(ctx, &config.Config{Sheet: tt.sheet})
			require.NoError(t, err)
			defer src.Close()

			sh, err := src.Open(ctx)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, core.ErrSourceUnavailable)
				return
			}
			require.NoError(t, err)

			headers, err := sh.Headers(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"Status"}, headers)

			if c, ok := sh.(interface{ Close() error }); ok {
				require.NoError(t, c.Close())
			}
		})
	}
}

func TestNewSource_UnknownBackend(t *testing.T) {
	_, err := NewSource(context.Background(), &config.Config{
		Sheet: config.SheetConfig{ID: "x", Backend: "gsheets"},
	})
	assert.Error(t, err)
}
