package meta

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

type document struct {
	CPUs     int           `json:"cpus" yaml:"cpus" toml:"cpus"`
	Name     string        `json:"name" yaml:"name" toml:"name"`
	Idle     time.Duration `json:"idle" yaml:"idle" toml:"idle"`
	Quantums []int         `json:"quantums" yaml:"quantums" toml:"quantums"`
}

func TestService_Load(t *testing.T) {
	t.Setenv("KCORE_TEST_CPUS", "4")
	ctx := context.Background()
	fs := afs.New()

	var testCases = []struct {
		description string
		URL         string
		content     string
		expect      document
		expectErr   bool
	}{
		{
			description: "yaml with env",
			URL:         "mem://localhost/meta/kernel.yaml",
			content:     "cpus: ${env.KCORE_TEST_CPUS}\nname: ${env.KCORE_TEST_NAME:-kcore}\nquantums: [64, 32, 16, 8]\n",
			expect:      document{CPUs: 4, Name: "kcore", Quantums: []int{64, 32, 16, 8}},
		},
		{
			description: "toml",
			URL:         "mem://localhost/meta/kernel.toml",
			content:     "cpus = 2\nname = \"toml\"\nquantums = [1, 2]\n",
			expect:      document{CPUs: 2, Name: "toml", Quantums: []int{1, 2}},
		},
		{
			description: "json",
			URL:         "mem://localhost/meta/kernel.json",
			content:     `{"cpus": ${env.KCORE_TEST_CPUS}, "name": "json"}`,
			expect:      document{CPUs: 4, Name: "json"},
		},
		{
			description: "unsupported extension",
			URL:         "mem://localhost/meta/kernel.ini",
			content:     "cpus=1",
			expectErr:   true,
		},
		{
			description: "malformed yaml",
			URL:         "mem://localhost/meta/broken.yaml",
			content:     "cpus: [1",
			expectErr:   true,
		},
	}

	srv := New(fs)
	for _, testCase := range testCases {
		require.NoError(t, fs.Upload(ctx, testCase.URL, file.DefaultFileOsMode, bytes.NewReader([]byte(testCase.content))), testCase.description)
		var actual document
		err := srv.Load(ctx, testCase.URL, &actual)
		if testCase.expectErr {
			assert.Error(t, err, testCase.description)
			continue
		}
		require.NoError(t, err, testCase.description)
		assert.Equal(t, testCase.expect, actual, testCase.description)
	}
}

func TestService_LoadMissing(t *testing.T) {
	err := New(nil).Load(context.Background(), "mem://localhost/meta/missing.yaml", &document{})
	assert.Error(t, err)
}
