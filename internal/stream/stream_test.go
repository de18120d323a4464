package stream

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideaforge/internal/types"
)

type flushRecorder struct {
	bytes.Buffer
	flushes int
}

func (f *flushRecorder) Flush() { f.flushes++ }

type failingWriter struct{ n int }

func (f *failingWriter) Write(p []byte) (int, error) {
	f.n++
	if f.n > 1 {
		return 0, errors.New("broken pipe")
	}
	return len(p), nil
}

func TestWriter_FramesAndFlushes(t *testing.T) {
	var out flushRecorder
	w := NewWriter(&out)
	require.NoError(t, w.Emit(Stage(types.StageResearching, "", "Researching")))
	require.NoError(t, w.Emit(SectionComplete(&types.VisionSection{ProductName: "BeanBox"})))
	require.NoError(t, w.Emit(Complete("r-1")))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.JSONEq(t, `{"event":"stage","data":{"stage":"researching","message":"Researching"}}`, lines[0])
	assert.Contains(t, lines[1], `"section":"vision"`)
	assert.JSONEq(t, `{"event":"complete","data":{"reportId":"r-1"}}`, lines[2])
	assert.Equal(t, 3, out.flushes)
}

func TestWriter_OneTerminalEvent(t *testing.T) {
	var out bytes.Buffer
	w := NewWriter(&out)
	require.NoError(t, w.Emit(Error("boom")))
	assert.True(t, w.Closed())
	assert.ErrorIs(t, w.Emit(Complete("")), ErrClosed)
	w.Fail("second")
	assert.Equal(t, 1, strings.Count(out.String(), "\n"))
}

func TestWriter_RejectsDuplicatesAndRegressions(t *testing.T) {
	w := NewWriter(io.Discard)
	require.NoError(t, w.Emit(SectionComplete(&types.MarketSection{})))
	assert.ErrorIs(t, w.Emit(SectionComplete(&types.MarketSection{})), ErrDuplicateSection)

	require.NoError(t, w.Emit(Stage(types.StageGenerating, "", "")))
	require.NoError(t, w.Emit(Stage(types.StageGeneratingDependent, "verdict", "")))
	require.NoError(t, w.Emit(Stage(types.StageGeneratingDependent, "advisors", "")))
	assert.ErrorIs(t, w.Emit(Stage(types.StageResearching, "", "")), ErrStageRegression)

	assert.ErrorIs(t, w.Emit(Event{Type: "bogus", Data: []byte(`{}`)}), ErrUnexpectedEvent)
	assert.Equal(t, []types.SectionName{types.SectionMarket}, w.Completed())
}

func TestWriter_StopsAfterWriteError(t *testing.T) {
	fw := &failingWriter{}
	w := NewWriter(fw)
	require.NoError(t, w.Emit(Progress("one", 1, 0)))
	err := w.Emit(Progress("two", 2, 0))
	require.Error(t, err)
	assert.True(t, w.Closed())
	assert.Error(t, w.Emit(Progress("three", 3, 0)))
	assert.Equal(t, 2, fw.n, "no write may be attempted after a failure")
}

func TestWriter_FailedWriteRecordsNothing(t *testing.T) {
	w := NewWriter(&failingWriter{})
	require.NoError(t, w.Emit(SectionComplete(&types.VisionSection{})))
	require.Error(t, w.Emit(SectionComplete(&types.MarketSection{})))
	assert.Equal(t, []types.SectionName{types.SectionVision}, w.Completed(),
		"a section whose record was not written must not count as completed")
}

func TestWriter_ConcurrentEmitsDoNotInterleave(t *testing.T) {
	var out bytes.Buffer
	w := NewWriter(&out)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = w.Emit(Progress(strings.Repeat("x", 500), i, i))
		}()
	}
	wg.Wait()

	var d Decoder
	events, err := d.Feed(out.Bytes())
	require.NoError(t, err)
	assert.Len(t, events, 50)
	assert.Zero(t, d.Buffered())
}

func TestDecoder_PartialLines(t *testing.T) {
	var out bytes.Buffer
	w := NewWriter(&out)
	require.NoError(t, w.Emit(Stage(types.StageResearching, "", "a")))
	require.NoError(t, w.Emit(Progress("b", 1, 3)))
	require.NoError(t, w.Emit(Complete("id")))
	wire := out.Bytes()

	// Feed the stream in every possible pair of chunks.
	for cut := 0; cut <= len(wire); cut++ {
		var d Decoder
		first, err := d.Feed(wire[:cut])
		require.NoError(t, err)
		second, err := d.Feed(wire[cut:])
		require.NoError(t, err)
		got := append(first, second...)
		require.Len(t, got, 3, "cut at %d", cut)
		assert.Equal(t, EventStage, got[0].Type)
		assert.Equal(t, EventComplete, got[2].Type)
	}
}

func TestDecoder_FlushTrailingRecord(t *testing.T) {
	var d Decoder
	events, err := d.Feed([]byte(`{"event":"progress","data":{"message":"x"}}` + "\n" + `{"event":"complete","data":{}}`))
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Positive(t, d.Buffered())

	rest, err := d.Flush()
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, EventComplete, rest[0].Type)
}

func TestDecoder_MalformedLine(t *testing.T) {
	var d Decoder
	events, err := d.Feed([]byte("{\"event\":\"progress\",\"data\":{}}\nnot json\n"))
	assert.Len(t, events, 1)
	assert.Error(t, err)
}

func TestRead(t *testing.T) {
	in := "\n" + `{"event":"stage","data":{"stage":"researching","message":""}}` + "\n\n" + `{"event":"error","data":{"message":"x"}}`
	var got []EventType
	err := Read(strings.NewReader(in), func(e Event) error {
		got = append(got, e.Type)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []EventType{EventStage, EventError}, got)
}

func runEvents() []Event {
	return []Event{
		Stage(types.StageResearching, "", "Researching"),
		Progress("Searching competitors", 1, 6),
		ResearchComplete(&types.ResearchRecord{
			RawSearchResults: make([]types.SearchHit, 9),
			Competitors:      make([]types.Competitor, 2),
			CaseStudies:      make([]types.CaseStudyFinding, 1),
		}),
		Stage(types.StageGenerating, "", "Generating"),
		SectionComplete(&types.MarketSection{TAM: "$40B"}),
		SectionComplete(&types.VisionSection{ProductName: "BeanBox"}),
		SectionComplete(&types.BattlefieldSection{MarketGaps: []string{"freshness"}}),
		Stage(types.StageGeneratingDependent, "verdict", "Verdict"),
		SectionComplete(&types.VerdictSection{Score: 72, Decision: "go"}),
		Stage(types.StageGeneratingDependent, "advisors", "Advisors"),
		SectionComplete(&types.AdvisorsSection{Advisors: []types.Advisor{{Name: "Ada"}}}),
		Complete("r-42"),
	}
}

func TestApplyEvent_FoldsRun(t *testing.T) {
	s, err := Fold(runEvents())
	require.NoError(t, err)

	assert.True(t, s.Done())
	assert.Equal(t, types.StageComplete, s.Stage)
	assert.Equal(t, "r-42", s.ReportID)
	assert.Equal(t, "Searching competitors", s.LastProgress)
	assert.Equal(t, &ResearchCompleteData{Sources: 9, Competitors: 2, CaseStudies: 1}, s.Research)

	want := &types.Report{
		Vision:      &types.VisionSection{ProductName: "BeanBox"},
		Market:      &types.MarketSection{TAM: "$40B"},
		Battlefield: &types.BattlefieldSection{MarketGaps: []string{"freshness"}},
		Verdict:     &types.VerdictSection{Score: 72, Decision: "go"},
		Advisors:    &types.AdvisorsSection{Advisors: []types.Advisor{{Name: "Ada"}}},
	}
	if diff := cmp.Diff(want, s.Report); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyEvent_IsPure(t *testing.T) {
	s0, err := ApplyEvent(State{}, SectionComplete(&types.VisionSection{ProductName: "A"}))
	require.NoError(t, err)

	s1, err := ApplyEvent(s0, SectionComplete(&types.MarketSection{TAM: "1"}))
	require.NoError(t, err)
	assert.Nil(t, s0.Report.Market, "earlier state must not see later sections")
	assert.NotNil(t, s1.Report.Market)

	_, err = ApplyEvent(s1, SectionComplete(&types.VisionSection{ProductName: "B"}))
	assert.ErrorIs(t, err, ErrDuplicateSection)
	assert.Equal(t, "A", s1.Report.Vision.ProductName)
}

func TestApplyEvent_Rejections(t *testing.T) {
	s, err := Fold([]Event{Stage(types.StageGenerating, "", "")})
	require.NoError(t, err)

	_, err = ApplyEvent(s, Stage(types.StageResearching, "", ""))
	assert.ErrorIs(t, err, ErrStageRegression)

	failed, err := ApplyEvent(s, Error("engine returned malformed output"))
	require.NoError(t, err)
	assert.Equal(t, types.StageError, failed.Stage)
	assert.Equal(t, "engine returned malformed output", failed.Error)

	_, err = ApplyEvent(failed, SectionComplete(&types.VerdictSection{}))
	assert.ErrorIs(t, err, ErrClosed)

	_, err = ApplyEvent(s, Event{Type: "mystery", Data: []byte(`{}`)})
	assert.ErrorIs(t, err, ErrUnexpectedEvent)
}

func TestEvent_Section(t *testing.T) {
	p, err := SectionComplete(&types.VerdictSection{Score: 10}).Section()
	require.NoError(t, err)
	assert.Equal(t, 10, p.(*types.VerdictSection).Score)

	_, err = Complete("").Section()
	assert.ErrorIs(t, err, ErrUnexpectedEvent)
}
