package kcore_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/kcore"
)

func TestConfig_Validate(t *testing.T) {
	var testCases = []struct {
		description string
		mutate      func(c *kcore.Config)
		expectErr   bool
	}{
		{description: "defaults", mutate: func(c *kcore.Config) {}},
		{description: "no process slots", mutate: func(c *kcore.Config) { c.Proc.Capacity = 0 }, expectErr: true},
		{description: "no cpus", mutate: func(c *kcore.Config) { c.Processor.CPUs = 0 }, expectErr: true},
		{description: "no semaphores", mutate: func(c *kcore.Config) { c.Semaphore.Capacity = 0 }, expectErr: true},
		{description: "zero quantum", mutate: func(c *kcore.Config) { c.Scheduler.TotalQuantum[1] = 0 }, expectErr: true},
		{description: "misaligned allocator", mutate: func(c *kcore.Config) { c.Allocator.Limit++ }, expectErr: true},
		{description: "events without buffer", mutate: func(c *kcore.Config) {
			c.Events.Enabled = true
			c.Events.QueueBuffer = 0
		}, expectErr: true},
	}
	for _, testCase := range testCases {
		config := kcore.DefaultConfig()
		testCase.mutate(config)
		err := config.Validate()
		if testCase.expectErr {
			assert.Error(t, err, testCase.description)
			continue
		}
		assert.NoError(t, err, testCase.description)
	}
	var config *kcore.Config
	assert.Error(t, config.Validate())
}

func TestLoadConfig(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	t.Setenv("KCORE_TEST_CPUS", "3")

	var testCases = []struct {
		description string
		URL         string
		content     string
		check       func(t *testing.T, c *kcore.Config)
		expectErr   bool
	}{
		{
			description: "yaml overrides",
			URL:         "mem://localhost/kcore/config.yaml",
			content: `
processor:
  cpus: ${env.KCORE_TEST_CPUS}
  idleInterval: 2ms
proc:
  capacity: ${env.KCORE_TEST_NPROC:-16}
allocator:
  seed: 7
`,
			check: func(t *testing.T, c *kcore.Config) {
				assert.Equal(t, 3, c.Processor.CPUs)
				assert.Equal(t, 2*time.Millisecond, c.Processor.IdleInterval)
				assert.Equal(t, 16, c.Proc.Capacity)
				assert.EqualValues(t, 7, c.Allocator.Seed)
				// untouched sections keep defaults
				assert.Equal(t, kcore.DefaultConfig().Scheduler, c.Scheduler)
				assert.Equal(t, 512, c.Allocator.HistorySize)
			},
		},
		{
			description: "toml overrides",
			URL:         "mem://localhost/kcore/config.toml",
			content: `
[scheduler]
starvationFactor = 4

[semaphore]
capacity = 8

[events]
enabled = true
`,
			check: func(t *testing.T, c *kcore.Config) {
				assert.Equal(t, 4, c.Scheduler.StarvationFactor)
				assert.Equal(t, [4]int{64, 32, 16, 8}, c.Scheduler.TotalQuantum)
				assert.Equal(t, 8, c.Semaphore.Capacity)
				assert.True(t, c.Events.Enabled)
			},
		},
		{
			description: "invalid values",
			URL:         "mem://localhost/kcore/invalid.yaml",
			content:     "proc:\n  capacity: -1\n",
			expectErr:   true,
		},
	}
	for _, testCase := range testCases {
		require.NoError(t, fs.Upload(ctx, testCase.URL, file.DefaultFileOsMode, bytes.NewReader([]byte(testCase.content))))
		config, err := kcore.LoadConfig(ctx, testCase.URL)
		if testCase.expectErr {
			assert.Error(t, err, testCase.description)
			continue
		}
		require.NoError(t, err, testCase.description)
		testCase.check(t, config)
	}
}
