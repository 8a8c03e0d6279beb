package dedup_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"

	"imagecollect/internal/dedup"
	"imagecollect/internal/fingerprint"
	"imagecollect/internal/fpcache"
	"imagecollect/internal/pipeline"
	"imagecollect/internal/testsupport"
)

// fakeFingerprinter serves fixed fingerprints and records every call.
type fakeFingerprinter struct {
	name   string
	values map[string]fingerprint.Fingerprint
	fail   map[string]error

	mu      sync.Mutex
	calls   []string
	digests map[string]string
}

func newFake(name string, values map[string]fingerprint.Fingerprint) *fakeFingerprinter {
	return &fakeFingerprinter{name: name, values: values, digests: make(map[string]string)}
}

func (f *fakeFingerprinter) Name() string { return f.name }

func (f *fakeFingerprinter) Fingerprint(_ context.Context, path, digest string) (fingerprint.Fingerprint, error) {
	f.mu.Lock()
	f.calls = append(f.calls, path)
	f.digests[path] = digest
	f.mu.Unlock()
	if err := f.fail[path]; err != nil {
		return "", err
	}
	fp, ok := f.values[path]
	if !ok {
		return "", fmt.Errorf("%s: no value for %s", f.name, path)
	}
	return fp, nil
}

func (f *fakeFingerprinter) calledWith() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string(nil), f.calls...)
	sort.Strings(out)
	return out
}

func TestRunTwoPassScenario(t *testing.T) {
	coarse := newFake("ahash", map[string]fingerprint.Fingerprint{
		"/A": "c1", "/B": "c1", "/C": "c1", "/D": "c2",
	})
	precise := newFake("phash", map[string]fingerprint.Fingerprint{
		"/A": "p1", "/B": "p2", "/C": "p1",
	})
	finder := dedup.NewFinder(afero.NewMemMapFs(), coarse, precise, dedup.Options{Workers: 1})

	res, err := finder.Run(context.Background(), []string{"/A", "/B", "/C", "/D"}, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := []dedup.Group{{"/A", "/C"}}; !reflect.DeepEqual(res.Groups, want) {
		t.Fatalf("Groups = %v, want %v", res.Groups, want)
	}
	if want := []string{"/A", "/B", "/C"}; !reflect.DeepEqual(res.Candidates, want) {
		t.Fatalf("Candidates = %v, want %v", res.Candidates, want)
	}
	if got := precise.calledWith(); !reflect.DeepEqual(got, []string{"/A", "/B", "/C"}) {
		t.Fatalf("precise pass ran on %v, want only candidates", got)
	}
	if res.Images != 4 {
		t.Fatalf("Images = %d, want 4", res.Images)
	}
}

func TestRunSkipsPrecisePassWithoutCandidates(t *testing.T) {
	coarse := newFake("ahash", map[string]fingerprint.Fingerprint{"/A": "1", "/B": "2"})
	precise := newFake("phash", nil)
	finder := dedup.NewFinder(afero.NewMemMapFs(), coarse, precise, dedup.Options{})

	res, err := finder.Run(context.Background(), []string{"/A", "/B"}, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Groups) != 0 {
		t.Fatalf("expected no groups, got %v", res.Groups)
	}
	if calls := precise.calledWith(); len(calls) != 0 {
		t.Fatalf("precise pass should not run, got %v", calls)
	}
}

func TestRunEmptyInputTouchesNothing(t *testing.T) {
	coarse := newFake("ahash", nil)
	precise := newFake("phash", nil)
	finder := dedup.NewFinder(afero.NewMemMapFs(), coarse, precise, dedup.Options{})

	res, err := finder.Run(context.Background(), nil, true)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Groups == nil || len(res.Groups) != 0 {
		t.Fatalf("expected empty groups, got %#v", res.Groups)
	}
	if len(coarse.calledWith())+len(precise.calledWith()) != 0 {
		t.Fatal("expected no fingerprint calls for empty input")
	}
}

func TestRunPropertiesHoldAcrossWorkerCounts(t *testing.T) {
	coarseValues := make(map[string]fingerprint.Fingerprint)
	preciseValues := make(map[string]fingerprint.Fingerprint)
	var paths []string
	for i := 0; i < 120; i++ {
		p := fmt.Sprintf("/img/%03d.png", (i*53)%120)
		paths = append(paths, p)
		coarseValues[p] = fingerprint.Fingerprint(fmt.Sprintf("c%d", i%9))
		preciseValues[p] = fingerprint.Fingerprint(fmt.Sprintf("p%d", i%5))
	}

	var baseline []dedup.Group
	for _, workers := range []int{1, 4, 32} {
		finder := dedup.NewFinder(afero.NewMemMapFs(),
			newFake("ahash", coarseValues), newFake("phash", preciseValues),
			dedup.Options{Workers: workers})
		res, err := finder.Run(context.Background(), paths, false)
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}

		seen := make(map[string]bool)
		coarseMembers := make(map[string]bool)
		for _, g := range res.CoarseGroups {
			for _, p := range g {
				coarseMembers[p] = true
			}
		}
		for _, g := range res.Groups {
			if len(g) < 2 {
				t.Fatalf("workers=%d: singleton group %v", workers, g)
			}
			for _, p := range g {
				if seen[p] {
					t.Fatalf("workers=%d: %s appears in two groups", workers, p)
				}
				seen[p] = true
				if !coarseMembers[p] {
					t.Fatalf("workers=%d: %s not in any coarse group", workers, p)
				}
			}
		}

		if baseline == nil {
			baseline = res.Groups
		} else if !reflect.DeepEqual(res.Groups, baseline) {
			t.Fatalf("workers=%d: groups differ from sequential run", workers)
		}
	}
}

func TestRunDropsRepeatedPaths(t *testing.T) {
	coarse := newFake("ahash", map[string]fingerprint.Fingerprint{"/A": "1", "/B": "2"})
	finder := dedup.NewFinder(afero.NewMemMapFs(), coarse, newFake("phash", nil), dedup.Options{})

	res, err := finder.Run(context.Background(), []string{"/A", "/A", "/B"}, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Groups) != 0 || res.Images != 2 {
		t.Fatalf("repeated path must not group with itself: %+v", res)
	}
}

func TestRunFailsOnUnreadableImage(t *testing.T) {
	boom := errors.New("corrupt jpeg")
	for _, stage := range []string{"coarse", "precise"} {
		t.Run(stage, func(t *testing.T) {
			coarse := newFake("ahash", map[string]fingerprint.Fingerprint{"/A": "1", "/B": "1"})
			precise := newFake("phash", map[string]fingerprint.Fingerprint{"/A": "1", "/B": "1"})
			target := coarse
			if stage == "precise" {
				target = precise
			}
			target.fail = map[string]error{"/B": boom}

			finder := dedup.NewFinder(afero.NewMemMapFs(), coarse, precise, dedup.Options{Workers: 2})
			_, err := finder.Run(context.Background(), []string{"/A", "/B"}, false)
			if !errors.Is(err, boom) {
				t.Fatalf("expected underlying error, got %v", err)
			}
			if !errors.Is(err, pipeline.ErrImage) {
				t.Fatalf("expected image marker, got %v", err)
			}
			for _, fragment := range []string{stage, "/B"} {
				if !strings.Contains(err.Error(), fragment) {
					t.Fatalf("expected %q in %q", fragment, err.Error())
				}
			}
		})
	}
}

func TestRunPassesDigestsOnlyWhenVerifying(t *testing.T) {
	fsys := afero.NewMemMapFs()
	testsupport.WriteFile(t, fsys, "/A", []byte("same"))
	testsupport.WriteFile(t, fsys, "/B", []byte("same"))
	values := map[string]fingerprint.Fingerprint{"/A": "1", "/B": "1"}

	for _, verify := range []bool{false, true} {
		coarse := newFake("ahash", values)
		precise := newFake("phash", values)
		finder := dedup.NewFinder(fsys, coarse, precise, dedup.Options{})
		if _, err := finder.Run(context.Background(), []string{"/A", "/B"}, verify); err != nil {
			t.Fatalf("Run(verify=%v): %v", verify, err)
		}
		for _, fake := range []*fakeFingerprinter{coarse, precise} {
			for path, digest := range fake.digests {
				if verify && len(digest) != 64 {
					t.Fatalf("%s %s: expected sha256 digest, got %q", fake.name, path, digest)
				}
				if !verify && digest != "" {
					t.Fatalf("%s %s: expected no digest, got %q", fake.name, path, digest)
				}
			}
		}
		if verify && coarse.digests["/A"] != coarse.digests["/B"] {
			t.Fatal("identical bytes must share a digest")
		}
	}
}

func TestRunReportsProgress(t *testing.T) {
	values := map[string]fingerprint.Fingerprint{"/A": "1", "/B": "1", "/C": "2"}
	var mu sync.Mutex
	last := map[dedup.Stage]int{}
	totals := map[dedup.Stage]int{}
	progress := func(stage dedup.Stage, done, total int) {
		mu.Lock()
		defer mu.Unlock()
		if done > last[stage] {
			last[stage] = done
		}
		totals[stage] = total
	}

	finder := dedup.NewFinder(afero.NewMemMapFs(), newFake("ahash", values), newFake("phash", values),
		dedup.Options{Workers: 3, Progress: progress})
	if _, err := finder.Run(context.Background(), []string{"/A", "/B", "/C"}, false); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if last[dedup.StageCoarse] != 3 || totals[dedup.StageCoarse] != 3 {
		t.Fatalf("coarse progress %d/%d, want 3/3", last[dedup.StageCoarse], totals[dedup.StageCoarse])
	}
	if last[dedup.StagePrecise] != 2 || totals[dedup.StagePrecise] != 2 {
		t.Fatalf("precise progress %d/%d, want 2/2", last[dedup.StagePrecise], totals[dedup.StagePrecise])
	}
}

func openCache(t *testing.T, dir string) *fpcache.Cache {
	t.Helper()
	cache, err := fpcache.Open(context.Background(), dir, fpcache.Options{TagIndex: true})
	if err != nil {
		t.Fatalf("fpcache.Open: %v", err)
	}
	return cache
}

func TestFindDuplicatesWithRealHashesAndCache(t *testing.T) {
	fsys := afero.NewMemMapFs()
	gradient := testsupport.EncodePNG(t, testsupport.Gradient(64, 48))
	testsupport.WriteFile(t, fsys, "/photos/x.png", gradient)
	testsupport.WriteFile(t, fsys, "/photos/sub/y.png", gradient)
	testsupport.WritePNG(t, fsys, "/photos/z.png", testsupport.Checker(64, 48, 8))
	testsupport.WriteFile(t, fsys, "/photos/readme.txt", []byte("ignored"))

	cfg := testsupport.NewConfig(t)
	cacheDir := cfg.Paths.CacheDir
	want := []dedup.Group{{"/photos/sub/y.png", "/photos/x.png"}}

	runOnce := func(verify bool) ([]dedup.Group, fpcache.Counters) {
		cache := openCache(t, cacheDir)
		defer cache.Close()
		finder, err := dedup.NewFinderFromConfig(fsys, cfg, cache, dedup.Options{})
		if err != nil {
			t.Fatalf("NewFinderFromConfig: %v", err)
		}
		groups, err := finder.FindDuplicates(context.Background(), []string{"/photos"}, true, verify)
		if err != nil {
			t.Fatalf("FindDuplicates: %v", err)
		}
		return groups, cache.Counters()
	}

	cold, coldCounters := runOnce(false)
	if !reflect.DeepEqual(cold, want) {
		t.Fatalf("cold run = %v, want %v", cold, want)
	}
	// Three coarse fingerprints plus two precise ones.
	if coldCounters.Computed != 5 {
		t.Fatalf("cold run computed %d fingerprints, want 5", coldCounters.Computed)
	}

	warm, warmCounters := runOnce(false)
	if !reflect.DeepEqual(warm, want) {
		t.Fatalf("warm run = %v, want %v", warm, want)
	}
	if warmCounters.Computed != 0 {
		t.Fatalf("warm run computed %d fingerprints, want 0", warmCounters.Computed)
	}

	// Verification against unchanged files: digests were never stored, so
	// every entry is refreshed once, then trusted.
	if _, c := runOnce(true); c.Computed != 5 {
		t.Fatalf("first verified run computed %d, want 5", c.Computed)
	}
	if _, c := runOnce(true); c.Computed != 0 {
		t.Fatalf("second verified run computed %d, want 0", c.Computed)
	}

	// Changing y's content forces recomputation for y only.
	testsupport.WritePNG(t, fsys, "/photos/sub/y.png", testsupport.Checker(64, 48, 8))
	groups, c := runOnce(true)
	if c.Computed == 0 {
		t.Fatal("expected mutated file to be recomputed")
	}
	if want := []dedup.Group{{"/photos/sub/y.png", "/photos/z.png"}}; !reflect.DeepEqual(groups, want) {
		t.Fatalf("after mutation groups = %v, want %v", groups, want)
	}
}

func TestFindDuplicatesMissingSource(t *testing.T) {
	finder := dedup.NewFinder(afero.NewMemMapFs(), newFake("ahash", nil), newFake("phash", nil), dedup.Options{})
	if _, err := finder.FindDuplicates(context.Background(), []string{"/missing"}, false, false); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestSearchEmptySourceLeavesCacheUntouched(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := fsys.MkdirAll("/photos/empty", 0o755); err != nil {
		t.Fatal(err)
	}
	testsupport.WriteFile(t, fsys, "/photos/notes.txt", []byte("not an image"))

	cfg := testsupport.NewConfig(t, testsupport.WithVerify(true), testsupport.WithWorkers(4))
	cache := openCache(t, cfg.Paths.CacheDir)
	defer cache.Close()
	finder, err := dedup.NewFinderFromConfig(fsys, cfg, cache, dedup.Options{})
	if err != nil {
		t.Fatalf("NewFinderFromConfig: %v", err)
	}

	res, err := finder.Search(context.Background(), []string{"/photos"}, true, cfg.Dedup.Verify)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Images != 0 || len(res.Candidates) != 0 || len(res.Groups) != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}
	if c := cache.Counters(); c != (fpcache.Counters{}) {
		t.Fatalf("expected untouched cache counters, got %+v", c)
	}
	stats, err := cache.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if len(stats) != 0 {
		t.Fatalf("expected no cache entries, got %+v", stats)
	}
}
