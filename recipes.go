package rxrecipes

import (
	"context"
	"fmt"
	"strconv"
	"time"
	"unicode/utf16"

	"github.com/7vars/rxrecipes/rx"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/atomic"
)

func init() {
	RegisterRecipe("just", just)
	RegisterRecipe("article", article)
	RegisterRecipe("map", mapping)
	RegisterRecipe("from", from)
	RegisterRecipe("description", description)
	RegisterRecipe("articles", articles)
	RegisterRecipe("filter", filter)
	RegisterRecipe("flatmap", flatMap)
	RegisterRecipe("take", take)
	RegisterRecipe("skip", skip)
	RegisterRecipe("takelast", takeLast)
	RegisterRecipe("skiplast", skipLast)
	RegisterRecipe("buffer", buffer)
	RegisterRecipe("debounce", debounce)
	RegisterRecipe("repeat", repeat)
	RegisterRecipe("retry", retry)
	RegisterRecipe("zip", zip)
	RegisterRecipe("concat", concat)
	RegisterRecipe("merge", merge)
	RegisterRecipe("share", share)
	RegisterRecipe("publish", publish)
	RegisterRecipe("replay", replay)
	RegisterRecipe("behavior", behavior)
}

// ===== basics =====

func just(ctx context.Context, k *Kitchen) error {
	return observe(ctx, k, "Just", rx.Just("Hello World"))
}

// article creates the name stream before the name is set; the stream reads
// the name only once subscribed.
func article(ctx context.Context, k *Kitchen) error {
	a := k.NewArticle()
	name := a.NameObservable()
	a.SetName("Supercars")
	return observe(ctx, k, "Article", name)
}

func mapping(ctx context.Context, k *Kitchen) error {
	hashes := rx.Map(rx.Just("This is map operator implementation"), hashCode)
	return observe(ctx, k, "Map", rx.Map(hashes, func(h int32) string {
		return strconv.Itoa(int(h))
	}))
}

func from(ctx context.Context, k *Kitchen) error {
	return observe(ctx, k, "From", rx.FromSlice([]int{1, 2, 3, 4, 5}))
}

func description(ctx context.Context, k *Kitchen) error {
	return observe(ctx, k, "Description", k.NewArticle().DescriptionObservable())
}

// articles loads the slow article list off the caller's goroutine.
func articles(ctx context.Context, k *Kitchen) error {
	a := k.NewArticle()
	src := rx.Defer(func() rx.Observable[string] {
		return rx.FromEnumerator(a.Articles(ctx))
	})
	return observe(ctx, k, "Articles", rx.DeliverOn(rx.RunOn(src, k.Background()), k.Foreground()))
}

// ===== operators =====

func filter(ctx context.Context, k *Kitchen) error {
	return trace(ctx, k, "Filter", rx.Filter(rx.Range(1, 10), func(v int) bool {
		return v%2 == 0
	}))
}

func flatMap(ctx context.Context, k *Kitchen) error {
	return trace(ctx, k, "FlatMap", rx.FlatMap(rx.Just("Supercars", "Bikes"), func(name string) rx.Observable[string] {
		return rx.Map(rx.Range(1, 2), func(i int) string {
			return name + " " + strconv.Itoa(i)
		})
	}))
}

func take(ctx context.Context, k *Kitchen) error {
	return trace(ctx, k, "Take", rx.Take(rx.Range(1, 10), 3))
}

func skip(ctx context.Context, k *Kitchen) error {
	return trace(ctx, k, "Skip", rx.Skip(rx.Range(1, 5), 2))
}

func takeLast(ctx context.Context, k *Kitchen) error {
	return trace(ctx, k, "TakeLast", rx.TakeLast(rx.Range(1, 5), 2))
}

func skipLast(ctx context.Context, k *Kitchen) error {
	return trace(ctx, k, "SkipLast", rx.SkipLast(rx.Range(1, 5), 2))
}

func buffer(ctx context.Context, k *Kitchen) error {
	return trace(ctx, k, "Buffer", rx.Buffer(rx.Range(1, 5), 2, 2))
}

// debounce types a word in two bursts separated by a pause; only the last
// value of each burst gets through.
func debounce(ctx context.Context, k *Kitchen) error {
	period := k.Settings().DebouncePeriod
	typing := rx.Create(func(e rx.Emitter[string]) {
		for i, word := range []string{"r", "re", "rec", "reci", "recip", "recipe"} {
			if i == 3 {
				select {
				case <-time.After(3 * period):
				case <-ctx.Done():
					e.Error(ctx.Err())
					return
				}
			}
			if e.IsUnsubscribed() {
				return
			}
			e.Next(word)
		}
		e.Complete()
	})

	debounced := rx.Debounce(rx.RunOn(typing, k.Background()), period)
	return trace(ctx, k, "Debounce", rx.DeliverOn(debounced, k.Foreground()))
}

func repeat(ctx context.Context, k *Kitchen) error {
	return trace(ctx, k, "Repeat", rx.Repeat(rx.Just("tick"), 3))
}

// retry fails the first two subscriptions.
func retry(ctx context.Context, k *Kitchen) error {
	var attempts int
	src := rx.Defer(func() rx.Observable[string] {
		attempts++
		if attempts < 3 {
			k.Logf("onCreate: Retry: attempt %d failed", attempts)
			return rx.Throw[string](errors.Errorf("attempt %d failed", attempts))
		}
		return rx.Just(fmt.Sprintf("succeeded after %d attempts", attempts))
	})
	return trace(ctx, k, "Retry", rx.Retry(src, 3))
}

func zip(ctx context.Context, k *Kitchen) error {
	return trace(ctx, k, "Zip", rx.Zip(rx.Just(1, 2, 3), rx.Just("x", "y"), func(i int, s string) string {
		return strconv.Itoa(i) + s
	}))
}

func concat(ctx context.Context, k *Kitchen) error {
	return trace(ctx, k, "Concat", rx.Concat(rx.Just(1, 2), rx.Just(3, 4)))
}

// merge interleaves two sources produced on the background pool, so the
// order between them varies.
func merge(ctx context.Context, k *Kitchen) error {
	return trace(ctx, k, "Merge", rx.Merge(
		rx.RunOn(rx.Just(1, 2), k.Background()),
		rx.RunOn(rx.Just(3, 4), k.Background()),
	))
}

// ===== subjects =====

func share(ctx context.Context, k *Kitchen) error {
	upstream := rx.NewPublishSubject[int]()
	var connects atomic.Int32
	shared := rx.Share(rx.Defer(func() rx.Observable[int] {
		connects.Inc()
		return upstream
	}))

	label := func(name string) rx.Observable[string] {
		return rx.Map(shared, func(v int) string { return name + " " + render(v) })
	}
	feed := then[string](func() {
		for i := 1; i <= 3; i++ {
			upstream.Next(i)
		}
		upstream.Complete()
	})

	if err := trace(ctx, k, "Share", rx.Merge(label("first"), label("second"), feed)); err != nil {
		return err
	}
	k.Logf("onCreate: Share: upstream subscriptions: %d", connects.Load())
	return nil
}

func publish(ctx context.Context, k *Kitchen) error {
	return subjectRecipe(ctx, k, "Publish", rx.NewPublishSubject[int]())
}

func replay(ctx context.Context, k *Kitchen) error {
	return subjectRecipe(ctx, k, "Replay", rx.NewReplaySubject[int]())
}

func behavior(ctx context.Context, k *Kitchen) error {
	return subjectRecipe(ctx, k, "Behavior", rx.NewBehaviorSubject(0))
}

// subjectRecipe pushes 1..3 before subscribing and 4..5 after.
func subjectRecipe(ctx context.Context, k *Kitchen, label string, s rx.Subject[int]) error {
	for i := 1; i <= 3; i++ {
		s.Next(i)
	}
	feed := then[int](func() {
		s.Next(4)
		s.Next(5)
		s.Complete()
	})
	return trace(ctx, k, label, rx.Merge[int](s, feed))
}

// ===== helpers =====

// observe logs every value of src and waits for the terminal signal. An error
// is logged and returned.
func observe[T any](ctx context.Context, k *Kitchen, label string, src rx.Observable[T]) error {
	return watch(ctx, k, label, src, false)
}

// trace is observe that logs completion as well.
func trace[T any](ctx context.Context, k *Kitchen, label string, src rx.Observable[T]) error {
	return watch(ctx, k, label, src, true)
}

func watch[T any](ctx context.Context, k *Kitchen, label string, src rx.Observable[T], completion bool) error {
	done := make(chan error, 1)
	sub := src.Subscribe(
		func(v T) {
			k.Logf("onCreate: %s: %s", label, render(v))
		},
		func(err error) {
			k.Logf("onCreate: %s: onError: %v", label, err)
			done <- err
		},
		func() {
			if completion {
				k.Logf("onCreate: %s: onComplete", label)
			}
			done <- nil
		},
	)

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		sub.Unsubscribe()
		return ctx.Err()
	}
}

// then runs f once subscribed and completes without a value.
func then[T any](f func()) rx.Observable[T] {
	return rx.Create(func(e rx.Emitter[T]) {
		f()
		e.Complete()
	})
}

func render(v interface{}) string {
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	return fmt.Sprint(v)
}

// hashCode is the 32-bit polynomial string hash over UTF-16 code units.
func hashCode(s string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = 31*h + int32(c)
	}
	return h
}
