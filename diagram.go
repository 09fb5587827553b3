package md2html

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Family names a kind of diagram fenced code block.
type Family string

const (
	FamilyMermaid     Family = "mermaid"
	FamilyPlantUML    Family = "plantuml"
	FamilyInfographic Family = "infographic"
)

type familySpec struct {
	class string
	label string
	style string
}

var familySpecs = map[Family]familySpec{
	FamilyMermaid:     {class: "mermaid-diagram", label: "Mermaid"},
	FamilyPlantUML:    {class: "plantuml-diagram", label: "PlantUML", style: "text-align: center; margin: 16px 8px; overflow-x: auto"},
	FamilyInfographic: {class: "infographic-diagram", label: "Infographic", style: "width: 100%;"},
}

// familyOf maps a fenced code block language to its diagram family.
func familyOf(lang string) (Family, bool) {
	lang = strings.ToLower(lang)
	switch {
	case strings.HasPrefix(lang, "mermaid"):
		return FamilyMermaid, true
	case lang == "plantuml":
		return FamilyPlantUML, true
	case lang == "infographic":
		return FamilyInfographic, true
	}
	return "", false
}

// DiagramRenderer turns diagram source into SVG markup.
type DiagramRenderer interface {
	RenderDiagram(ctx context.Context, source string) (string, error)
}

// DiagramRendererFunc adapts a function to DiagramRenderer.
type DiagramRendererFunc func(ctx context.Context, source string) (string, error)

func (f DiagramRendererFunc) RenderDiagram(ctx context.Context, source string) (string, error) {
	return f(ctx, source)
}

// Committer replaces the content of the element with the given id. It is
// how finished diagram jobs reach the presentation layer.
type Committer interface {
	Commit(id, markup string) error
}

// PendingJob is handed out for every placeholder whose diagram is still
// being rendered.
type PendingJob struct {
	ID     string
	Family Family
	Key    string

	done   chan struct{}
	markup string
	err    error
}

// Done is closed once the job has finished and its result was committed.
func (j *PendingJob) Done() <-chan struct{} {
	return j.done
}

// Result returns the committed markup and the render error, if any. It
// blocks until the job is done.
func (j *PendingJob) Result() (string, error) {
	<-j.done
	return j.markup, j.err
}

// DiagramKey is the content hash a diagram is cached under.
func DiagramKey(source string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(source))
	return strconv.FormatUint(uint64(h.Sum32()), 16)
}

// DiagramCache renders diagrams in the background and remembers every
// finished result by content hash, so an unchanged diagram is served
// immediately on the next render. Entries are never evicted.
type DiagramCache struct {
	mu        sync.Mutex
	entries   map[Family]map[string]string
	lastGood  map[Family]string
	renderers map[Family]DiagramRenderer
	committer Committer
	seq       uint64

	flight singleflight.Group
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewDiagramCache creates an empty cache without renderers.
func NewDiagramCache() *DiagramCache {
	ctx, cancel := context.WithCancel(context.Background())
	return &DiagramCache{
		entries:   make(map[Family]map[string]string),
		lastGood:  make(map[Family]string),
		renderers: make(map[Family]DiagramRenderer),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Register sets the renderer used for family f.
func (c *DiagramCache) Register(f Family, r DiagramRenderer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.renderers[f] = r
}

// HasRenderer reports whether a renderer is registered for f.
func (c *DiagramCache) HasRenderer(f Family) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renderers[f] != nil
}

// SetCommitter sets where finished jobs deliver their markup.
func (c *DiagramCache) SetCommitter(cm Committer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.committer = cm
}

// Lookup returns the cached SVG for source.
func (c *DiagramCache) Lookup(f Family, source string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	svg, ok := c.entries[f][DiagramKey(source)]
	return svg, ok
}

// Placeholder returns the markup to emit for a diagram. On a cache hit it
// is the wrapped SVG and no job is started. On a miss an element id is
// allocated, a background job is started and the returned markup shows
// the family's most recent render, or a loading text if there is none.
func (c *DiagramCache) Placeholder(f Family, source string) (string, *PendingJob) {
	key := DiagramKey(source)
	c.mu.Lock()
	if svg, ok := c.entries[f][key]; ok {
		c.mu.Unlock()
		return wrapDiagram(f, "", svg), nil
	}
	r := c.renderers[f]
	if r == nil {
		c.mu.Unlock()
		return wrapDiagram(f, "", diagramError(ErrNoRenderer)), nil
	}
	c.seq++
	job := &PendingJob{
		ID:     fmt.Sprintf("%s-%s-%d", f, key, c.seq),
		Family: f,
		Key:    key,
		done:   make(chan struct{}),
	}
	content, ok := c.lastGood[f]
	if !ok {
		content = "Loading " + familySpecs[f].label + "..."
	}
	c.wg.Add(1)
	c.mu.Unlock()

	go c.run(job, r, source)
	return wrapDiagram(f, job.ID, content), job
}

func (c *DiagramCache) run(job *PendingJob, r DiagramRenderer, source string) {
	defer c.wg.Done()
	defer close(job.done)
	v, err, shared := c.flight.Do(string(job.Family)+"/"+job.Key, func() (interface{}, error) {
		if svg, ok := c.Lookup(job.Family, source); ok {
			return svg, nil
		}
		svg, err := r.RenderDiagram(c.ctx, source)
		if err != nil {
			return "", err
		}
		c.mu.Lock()
		if c.entries[job.Family] == nil {
			c.entries[job.Family] = make(map[string]string)
		}
		c.entries[job.Family][job.Key] = svg
		c.lastGood[job.Family] = svg
		c.mu.Unlock()
		return svg, nil
	})
	if err != nil {
		tracer().Errorf("%s diagram %s: %v", job.Family, job.ID, err)
		job.err = err
		job.markup = diagramError(err)
	} else {
		job.markup = v.(string)
		tracer().Debugf("%s diagram %s rendered (shared=%v)", job.Family, job.ID, shared)
	}
	c.mu.Lock()
	cm := c.committer
	c.mu.Unlock()
	if cm == nil {
		return
	}
	if err := cm.Commit(job.ID, job.markup); err != nil {
		tracer().Debugf("commit %s dropped: %v", job.ID, err)
	}
}

// Wait blocks until every started job has finished.
func (c *DiagramCache) Wait() {
	c.wg.Wait()
}

// Close cancels running jobs and waits for them.
func (c *DiagramCache) Close() {
	c.cancel()
	c.wg.Wait()
}

func wrapDiagram(f Family, id, inner string) string {
	spec := familySpecs[f]
	var b strings.Builder
	b.WriteString("<!--")
	b.WriteString(string(f))
	b.WriteString("-start--><div")
	if id != "" {
		b.WriteString(` id="`)
		b.WriteString(id)
		b.WriteString(`"`)
	}
	b.WriteString(` class="`)
	b.WriteString(spec.class)
	b.WriteString(`"`)
	if spec.style != "" {
		b.WriteString(` style="`)
		b.WriteString(spec.style)
		b.WriteString(`"`)
	}
	b.WriteString(">")
	b.WriteString(inner)
	b.WriteString("</div><!--")
	b.WriteString(string(f))
	b.WriteString("-end-->")
	return b.String()
}

func diagramError(err error) string {
	msg := err.Error()
	if errors.Is(err, context.Canceled) {
		msg = "cancelled"
	}
	return `<div style="color: red; padding: 10px; border: 1px solid red;">Render failed: ` + escapeHTML(msg) + `</div>`
}
