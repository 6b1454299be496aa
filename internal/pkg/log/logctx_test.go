package log

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Тесты меняют slog.Default(), поэтому намеренно НЕ используют t.Parallel().

func newSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFrom_ReturnsDefault_WhenNoLoggerInContext(t *testing.T) {
	old := slog.Default()
	t.Cleanup(func() { slog.SetDefault(old) })

	def := newSilent()
	slog.SetDefault(def)

	require.Equal(t, def, From(context.Background()))
}

func TestIntoAndFrom_RoundTrip(t *testing.T) {
	l := newSilent()
	ctx := Into(context.Background(), l)

	require.Equal(t, l, From(ctx))
}

// From устойчив к «мусорным» значениям по нашему ключу и к *slog.Logger(nil).
func TestFrom_ReturnsDefault_WhenStoredValueIsWrongTypeOrNil(t *testing.T) {
	old := slog.Default()
	t.Cleanup(func() { slog.SetDefault(old) })
	def := newSilent()
	slog.SetDefault(def)

	ctxWrong := context.WithValue(context.Background(), ctxKey{}, "not-a-logger")
	require.Equal(t, def, From(ctxWrong))

	var nilLogger *slog.Logger
	ctxNil := context.WithValue(context.Background(), ctxKey{}, nilLogger)
	require.Equal(t, def, From(ctxNil))
}

func TestWith_AddsAttrsAndStoresLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	ctx, l := With(Into(context.Background(), base), slog.String("action", "login"))
	require.Equal(t, l, From(ctx))

	From(ctx).Info("ping")
	require.Contains(t, buf.String(), "action=login")
	require.Contains(t, buf.String(), "msg=ping")
}

// Into не меняет отмену и дедлайн родителя.
func TestInto_PreservesCancellationAndDeadline(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()

	child := Into(parent, newSilent())

	cdl, ok := child.Deadline()
	require.True(t, ok, "Дедлайн должен сохраниться")
	pdl, _ := parent.Deadline()
	require.WithinDuration(t, pdl, cdl, time.Millisecond)

	select {
	case <-child.Done():
		require.ErrorIs(t, child.Err(), context.DeadlineExceeded)
	case <-time.After(200 * time.Millisecond):
		t.Fatal("Ожидали дедлайн у дочернего контекста")
	}
}

func TestLookup(t *testing.T) {
	_, ok := Lookup(context.Background())
	require.False(t, ok)

	l := newSilent()
	got, ok := Lookup(Into(context.Background(), l))
	require.True(t, ok)
	require.Equal(t, l, got)
}
