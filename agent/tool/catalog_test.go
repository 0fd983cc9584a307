package tool

import (
	"context"
	"strings"
	"testing"

	contractx "github.com/tanpawarit/omega-summarizer/agent/contract"
	execlogx "github.com/tanpawarit/omega-summarizer/agent/execlog"
)

type recordingPipeline struct {
	refs []string
	res  contractx.Result
}

func (p *recordingPipeline) Acquire(ctx context.Context, ref string) contractx.Result {
	p.refs = append(p.refs, ref)
	return p.res
}

func TestCatalogInfos(t *testing.T) {
	t.Parallel()

	infos := NewCatalog(Pipelines{}).Infos()
	if len(infos) != 3 {
		t.Fatalf("expected 3 tool infos, got %d", len(infos))
	}
	want := []Name{ArticleTool, YouTubeTool, AudioTool}
	for i, info := range infos {
		if info.Name != string(want[i]) {
			t.Fatalf("tool %d = %s, want %s", i, info.Name, want[i])
		}
		if info.ParamsOneOf == nil {
			t.Fatalf("tool %s has no parameters", info.Name)
		}
	}
}

func TestDispatchRoutesToPipeline(t *testing.T) {
	t.Parallel()

	article := &recordingPipeline{res: contractx.OK("article summary")}
	youtube := &recordingPipeline{res: contractx.OK("video summary")}
	audio := &recordingPipeline{res: contractx.OK("audio summary")}
	catalog := NewCatalog(Pipelines{Article: article, YouTube: youtube, Audio: audio})

	log := execlogx.New()
	ctx := execlogx.WithLog(context.Background(), log)

	res := catalog.Dispatch(ctx, string(YouTubeTool), map[string]any{"url": " https://youtu.be/abc12345678 "})
	if !res.IsOK() || res.Text() != "video summary" {
		t.Fatalf("unexpected result: %s", res)
	}
	if len(youtube.refs) != 1 || youtube.refs[0] != "https://youtu.be/abc12345678" {
		t.Fatalf("youtube refs = %v", youtube.refs)
	}
	if len(article.refs) != 0 || len(audio.refs) != 0 {
		t.Fatal("other pipelines must not run")
	}

	res = catalog.Dispatch(ctx, string(AudioTool), map[string]any{"file_path": "/tmp/a.wav"})
	if !res.IsOK() || audio.refs[0] != "/tmp/a.wav" {
		t.Fatalf("audio dispatch failed: %s", res)
	}
	if len(log.Entries()) == 0 {
		t.Fatal("dispatch not logged")
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	t.Parallel()

	res := NewCatalog(Pipelines{}).Dispatch(context.Background(), "weather_tool", map[string]any{"url": "x"})
	if res.IsOK() {
		t.Fatal("expected failure")
	}
	if res.Text() != "Unknown tool: weather_tool" {
		t.Fatalf("unexpected diagnostic: %q", res.Text())
	}
}

func TestDispatchMissingArgument(t *testing.T) {
	t.Parallel()

	article := &recordingPipeline{res: contractx.OK("unused")}
	catalog := NewCatalog(Pipelines{Article: article})

	for _, args := range []map[string]any{nil, {}, {"url": ""}, {"url": 42}, {"link": "https://example.com"}} {
		res := catalog.Dispatch(context.Background(), string(ArticleTool), args)
		if res.IsOK() {
			t.Fatalf("expected failure for args %v", args)
		}
		if !strings.HasPrefix(res.Text(), "article_tool: ") {
			t.Fatalf("unexpected diagnostic: %q", res.Text())
		}
	}
	if len(article.refs) != 0 {
		t.Fatal("pipeline ran without a valid argument")
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog(Pipelines{})
	if name, ok := catalog.Lookup("audio_tool"); !ok || name != AudioTool {
		t.Fatalf("Lookup(audio_tool) = %s, %v", name, ok)
	}
	if _, ok := catalog.Lookup("math.evaluate"); ok {
		t.Fatal("unexpected known tool")
	}
}
