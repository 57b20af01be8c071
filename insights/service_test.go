package insights

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/gymcheckin/attendance"
	"github.com/cppla/gymcheckin/domain"
)

type windowSourceMock struct {
	WindowFunc func(ctx context.Context, days int) (attendance.Window, error)
	calls      int
}

func (m *windowSourceMock) Window(ctx context.Context, days int) (attendance.Window, error) {
	m.calls++
	return m.WindowFunc(ctx, days)
}

func windowOf(w attendance.Window) *windowSourceMock {
	return &windowSourceMock{WindowFunc: func(context.Context, int) (attendance.Window, error) { return w, nil }}
}

type generatorMock struct {
	GenerateFunc func(ctx context.Context, prompt string) (string, error)
	prompts      []string
}

func (m *generatorMock) Generate(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	return m.GenerateFunc(ctx, prompt)
}

func busyWindow() attendance.Window {
	w := attendance.Window{
		Total: 3,
		Days: []attendance.DailyBucket{
			{Date: "2026-10-18", Checkins: 1},
			{Date: "2026-10-19", Checkins: 2},
		},
	}
	w.Hours[18] = 3
	return w
}

func TestService_EmptyWindowShortCircuits(t *testing.T) {
	t.Parallel()

	gen := &generatorMock{GenerateFunc: func(context.Context, string) (string, error) {
		t.Fatal("generator must not be called")
		return "", nil
	}}
	src := windowOf(attendance.Window{Days: make([]attendance.DailyBucket, 14)})
	svc := NewService(src, gen, 14, nil)

	res, err := svc.Generate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, NoDataMessage, res.Insights)
	assert.Empty(t, res.Bullets)
	assert.Empty(t, gen.prompts)
}

func TestService_SingleCallAndParse(t *testing.T) {
	t.Parallel()

	gen := &generatorMock{GenerateFunc: func(context.Context, string) (string, error) {
		return "- Evenings dominate.\n- <b>Limited</b> history so far.", nil
	}}
	src := &windowSourceMock{WindowFunc: func(_ context.Context, days int) (attendance.Window, error) {
		assert.Equal(t, 14, days)
		return busyWindow(), nil
	}}
	svc := NewService(src, gen, 0, nil)

	res, err := svc.Generate(context.Background())

	require.NoError(t, err)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "- Total check-ins: 3")
	assert.Equal(t, "- Evenings dominate.\n- Limited history so far.", res.Insights)
	assert.Equal(t, []Bullet{
		{Text: "Evenings dominate."},
		{Text: "Limited history so far.", IsCaution: true},
	}, res.Bullets)
}

func TestService_NotConfigured(t *testing.T) {
	t.Parallel()

	src := windowOf(busyWindow())
	svc := NewService(src, nil, 14, nil)

	_, err := svc.Generate(context.Background())

	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.False(t, svc.Configured())
	assert.Zero(t, src.calls)
}

func TestService_Failures(t *testing.T) {
	t.Parallel()

	t.Run("store", func(t *testing.T) {
		src := &windowSourceMock{WindowFunc: func(context.Context, int) (attendance.Window, error) {
			return attendance.Window{}, domain.NewStoreError("query checkins", errors.New("down"))
		}}
		gen := &generatorMock{GenerateFunc: func(context.Context, string) (string, error) { return "x", nil }}

		_, err := NewService(src, gen, 14, nil).Generate(context.Background())

		assert.ErrorIs(t, err, domain.ErrStore)
		assert.Empty(t, gen.prompts)
	})

	t.Run("generation", func(t *testing.T) {
		gen := &generatorMock{GenerateFunc: func(context.Context, string) (string, error) {
			return "", &domain.GenerationError{Reason: "bedrock call failed", Err: errors.New("throttled")}
		}}

		_, err := NewService(windowOf(busyWindow()), gen, 14, nil).Generate(context.Background())

		assert.Equal(t, domain.KindGeneration, domain.KindOf(err))
		assert.Len(t, gen.prompts, 1)
	})

	t.Run("markup only output", func(t *testing.T) {
		gen := &generatorMock{GenerateFunc: func(context.Context, string) (string, error) {
			return "<script></script>", nil
		}}

		_, err := NewService(windowOf(busyWindow()), gen, 14, nil).Generate(context.Background())

		assert.ErrorIs(t, err, domain.ErrGeneration)
	})
}

func TestNewBedrockGenerator_MissingSettings(t *testing.T) {
	t.Parallel()

	_, err := NewBedrockGenerator(context.Background(), BedrockSettings{Region: "us-east-1"})
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = NewBedrockGenerator(context.Background(), BedrockSettings{ModelID: "anthropic.claude-3-haiku-20240307-v1:0"})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
