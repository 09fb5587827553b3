package md2html

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/suite"

	"github.com/arran4/md2html/dom"
)

type commitLog struct {
	mu      sync.Mutex
	commits map[string]string
}

func (l *commitLog) Commit(id, markup string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.commits == nil {
		l.commits = make(map[string]string)
	}
	l.commits[id] = markup
	return nil
}

func (l *commitLog) get(id string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.commits[id]
	return m, ok
}

// countingRenderer returns "<svg>source</svg>" and counts its calls. When
// release is set every call waits for it to be closed.
type countingRenderer struct {
	calls   atomic.Int32
	release chan struct{}
}

func (r *countingRenderer) RenderDiagram(ctx context.Context, source string) (string, error) {
	r.calls.Add(1)
	if r.release != nil {
		select {
		case <-r.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "<svg>" + source + "</svg>", nil
}

// --- Test Suite Preparation ------------------------------------------------

type DiagramTestEnviron struct {
	suite.Suite
	cache   *DiagramCache
	commits *commitLog
}

// listen for 'go test' command --> run test methods
func TestDiagramCache(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "md2html")
	defer teardown()
	suite.Run(t, new(DiagramTestEnviron))
}

// run once, before test suite methods
func (env *DiagramTestEnviron) SetupSuite() {
	tracing.Select("md2html").SetTraceLevel(tracing.LevelInfo)
}

func (env *DiagramTestEnviron) SetupTest() {
	env.cache = NewDiagramCache()
	env.commits = &commitLog{}
	env.cache.SetCommitter(env.commits)
}

func (env *DiagramTestEnviron) TearDownTest() {
	env.cache.Close()
}

// --- Tests -----------------------------------------------------------------

func (env *DiagramTestEnviron) TestCacheHitSkipsRenderer() {
	r := &countingRenderer{}
	env.cache.Register(FamilyMermaid, r)

	markup, job := env.cache.Placeholder(FamilyMermaid, "A-->B")
	env.Require().NotNil(job)
	env.Contains(markup, `id="`+job.ID+`"`)
	env.Contains(markup, "Loading Mermaid...")
	env.Equal(DiagramKey("A-->B"), job.Key)

	svg, err := job.Result()
	env.Require().NoError(err)
	env.Equal("<svg>A-->B</svg>", svg)
	committed, ok := env.commits.get(job.ID)
	env.True(ok)
	env.Equal(svg, committed)

	markup, job = env.cache.Placeholder(FamilyMermaid, "A-->B")
	env.Nil(job)
	env.Equal(`<!--mermaid-start--><div class="mermaid-diagram"><svg>A-->B</svg></div><!--mermaid-end-->`, markup)
	env.EqualValues(1, r.calls.Load())

	cached, ok := env.cache.Lookup(FamilyMermaid, "A-->B")
	env.True(ok)
	env.Equal(svg, cached)
	_, ok = env.cache.Lookup(FamilyInfographic, "A-->B")
	env.False(ok)
}

func (env *DiagramTestEnviron) TestPlaceholderShowsLastRender() {
	env.cache.Register(FamilyInfographic, &countingRenderer{})
	_, job := env.cache.Placeholder(FamilyInfographic, "first")
	env.Require().NotNil(job)
	_, _ = job.Result()

	markup, job := env.cache.Placeholder(FamilyInfographic, "second")
	env.Require().NotNil(job)
	env.Contains(markup, "<svg>first</svg>")
	env.Contains(markup, `class="infographic-diagram" style="width: 100%;"`)
	svg, err := job.Result()
	env.NoError(err)
	env.Equal("<svg>second</svg>", svg)
}

func (env *DiagramTestEnviron) TestConcurrentJobsShareOneRender() {
	r := &countingRenderer{release: make(chan struct{})}
	env.cache.Register(FamilyMermaid, r)
	_, a := env.cache.Placeholder(FamilyMermaid, "same")
	_, b := env.cache.Placeholder(FamilyMermaid, "same")
	env.Require().NotNil(a)
	env.Require().NotNil(b)
	env.NotEqual(a.ID, b.ID)
	close(r.release)
	env.cache.Wait()
	ma, _ := a.Result()
	mb, _ := b.Result()
	env.Equal(ma, mb)
	env.EqualValues(1, r.calls.Load())
}

func (env *DiagramTestEnviron) TestFailedRenderIsNotCached() {
	boom := errors.New("boom <now>")
	env.cache.Register(FamilyMermaid, DiagramRendererFunc(func(ctx context.Context, source string) (string, error) {
		return "", boom
	}))
	_, job := env.cache.Placeholder(FamilyMermaid, "bad")
	env.Require().NotNil(job)
	markup, err := job.Result()
	env.ErrorIs(err, boom)
	env.Contains(markup, "Render failed: boom &lt;now&gt;")
	committed, _ := env.commits.get(job.ID)
	env.Equal(markup, committed)
	_, ok := env.cache.Lookup(FamilyMermaid, "bad")
	env.False(ok)
}

func (env *DiagramTestEnviron) TestMissingRenderer() {
	env.False(env.cache.HasRenderer(FamilyPlantUML))
	markup, job := env.cache.Placeholder(FamilyPlantUML, "A -> B")
	env.Nil(job)
	env.Contains(markup, ErrNoRenderer.Error())
}

func (env *DiagramTestEnviron) TestCloseCancelsJobs() {
	r := &countingRenderer{release: make(chan struct{})}
	env.cache.Register(FamilyMermaid, r)
	_, job := env.cache.Placeholder(FamilyMermaid, "slow")
	env.Require().NotNil(job)
	env.cache.Close()
	markup, err := job.Result()
	env.ErrorIs(err, context.Canceled)
	env.Contains(markup, "Render failed: cancelled")
}

func (env *DiagramTestEnviron) TestStaleCommitIsDropped() {
	doc := dom.New()
	env.cache.SetCommitter(doc)
	env.cache.Register(FamilyMermaid, &countingRenderer{})
	_, job := env.cache.Placeholder(FamilyMermaid, "gone")
	env.Require().NotNil(job)
	select {
	case <-job.Done():
	case <-time.After(5 * time.Second):
		env.FailNow("job did not finish")
	}
	_, err := doc.InnerHTML(job.ID)
	env.ErrorIs(err, dom.ErrNotFound)
	svg, err := job.Result()
	env.NoError(err)
	env.Equal("<svg>gone</svg>", svg)
}

func (env *DiagramTestEnviron) TestRendererCommitsIntoDocument() {
	rd := &countingRenderer{release: make(chan struct{})}
	r := New()
	defer r.Close()
	r.UseDiagramCache(env.cache)
	env.cache.Register(FamilyMermaid, rd)
	doc := dom.New()
	env.cache.SetCommitter(doc)

	src := []byte("# Chart\n\n```mermaid\ngraph TD;A-->B\n```\n")
	res, err := r.Render(src)
	env.Require().NoError(err)
	env.Require().Len(res.Pending, 1)
	job := res.Pending[0]
	env.Contains(res.HTML, "<!--mermaid-start-->")
	env.Contains(res.HTML, `id="`+job.ID+`"`)
	env.Require().NoError(doc.Mount(res.HTML))

	close(rd.release)
	_, err = job.Result()
	env.Require().NoError(err)
	inner, err := doc.InnerHTML(job.ID)
	env.Require().NoError(err)
	env.Equal("<svg>graph TD;A--&gt;B</svg>", inner)

	res, err = r.Render(src)
	env.Require().NoError(err)
	env.Empty(res.Pending)
	env.Contains(res.HTML, "<svg>graph TD;A-->B</svg>")
	env.EqualValues(1, rd.calls.Load())
}

func TestDiagramKeyIsStable(t *testing.T) {
	if DiagramKey("a") != DiagramKey("a") {
		t.Fatalf("expected equal keys for equal sources")
	}
	if DiagramKey("a") == DiagramKey("b") {
		t.Fatalf("expected different keys for different sources")
	}
}

func TestFamilyOf(t *testing.T) {
	cases := map[string]Family{"mermaid": FamilyMermaid, "Mermaid-js": FamilyMermaid, "plantuml": FamilyPlantUML, "infographic": FamilyInfographic}
	for lang, want := range cases {
		if got, ok := familyOf(lang); !ok || got != want {
			t.Fatalf("familyOf(%q) = %q, %v", lang, got, ok)
		}
	}
	if _, ok := familyOf("go"); ok {
		t.Fatalf("expected go not to be a diagram")
	}
}

func TestDebouncerCollapsesBursts(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(40*time.Millisecond, func() { calls.Add(1) })
	for i := 0; i < 5; i++ {
		d.Trigger()
	}
	time.Sleep(200 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected one call, got %d", n)
	}

	d.Trigger()
	d.Stop()
	time.Sleep(100 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected Stop to cancel the call, got %d calls", n)
	}

	var nilDebouncer *Debouncer
	nilDebouncer.Trigger()
	nilDebouncer.Stop()
}

func TestDiagramRuntimeCallback(t *testing.T) {
	fired := make(chan struct{}, 4)
	r := New()
	defer r.Close()
	r.OnDiagramRuntime(func() { fired <- struct{}{} }, 40*time.Millisecond)
	for i := 0; i < 3; i++ {
		if _, err := r.Render([]byte("```mermaid\ngraph LR;X-->Y\n```\n")); err != nil {
			t.Fatalf("render failed: %v", err)
		}
	}
	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatalf("diagram runtime callback did not fire")
	}
	time.Sleep(100 * time.Millisecond)
	if len(fired) != 0 {
		t.Fatalf("expected renders to collapse into one callback")
	}
	out, err := r.RenderBody([]byte("no diagrams here\n"))
	if err != nil || strings.Contains(out, "mermaid") {
		t.Fatalf("unexpected output %q, %v", out, err)
	}
}
