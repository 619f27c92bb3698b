package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/janelia-flyem/sp2body/labels"
	"github.com/janelia-flyem/sp2body/raveler"
	"github.com/janelia-flyem/sp2body/storage"
)

// writeExport creates mapping files and superpixel planes 5 and 6 in dir.
func writeExport(t *testing.T, dir string) []string {
	t.Helper()
	files := map[string]string{
		"superpixel_to_segment_map.txt": "5 1 10\n5 2 20\n6 1 20\n6 2 30\n",
		"segment_to_body_map.txt":       "10 100\n20 200\n30 300\n",
	}
	for name, text := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0644); err != nil {
			t.Fatalf("%v\n", err)
		}
	}
	args := []string{
		filepath.Join(dir, "superpixel_to_segment_map.txt"),
		filepath.Join(dir, "segment_to_body_map.txt"),
	}
	for _, z := range []int{6, 5} {
		path := filepath.Join(dir, fmt.Sprintf("sp_map.%05d.png", z))
		img, _ := labels.MakeImage([]uint32{1, 2, 2, 1}, 2, 2)
		f, err := os.Create(path)
		if err != nil {
			t.Fatalf("%v\n", err)
		}
		if err := raveler.EncodeSuperpixels(f, img); err != nil {
			t.Fatalf("%v\n", err)
		}
		f.Close()
		args = append(args, path)
	}
	return args
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	inputs := writeExport(t, dir)

	for _, format := range []string{"n5", "labelvol"} {
		output := filepath.Join(dir, "out-"+format+".n5")
		if format == "labelvol" {
			output = filepath.Join(dir, "out.dvol")
		}
		var stdout bytes.Buffer
		args := append([]string{"-output", output, "-format", format}, inputs...)
		if err := run(ctx, args, &stdout); err != nil {
			t.Fatalf("%s: run failed: %v\n", format, err)
		}
		vol, err := storage.ReadVolume(ctx, output)
		if err != nil {
			t.Fatalf("%s: couldn't read output: %v\n", format, err)
		}
		expected := []uint64{100, 200, 200, 100, 200, 300, 300, 200}
		if vol.Depth() != 2 || vol.Planes[0] != 5 {
			t.Fatalf("%s: bad planes %v\n", format, vol.Planes)
		}
		for i, v := range expected {
			if vol.Data[i] != v {
				t.Errorf("%s: voxel %d is %d, expected %d\n", format, i, vol.Data[i], v)
			}
		}
		if !strings.Contains(stdout.String(), "DONE") {
			t.Errorf("%s: unexpected output:\n%s\n", format, stdout.String())
		}

		// existing output needs -force
		if err := run(ctx, args, &stdout); !errors.Is(err, storage.ErrExists) {
			t.Errorf("%s: expected exists error, got %v\n", format, err)
		}
		if err := run(ctx, append([]string{"-force"}, args...), &stdout); err != nil {
			t.Errorf("%s: forced run failed: %v\n", format, err)
		}
	}
}

func TestRunDefaultOutput(t *testing.T) {
	dir := t.TempDir()
	inputs := writeExport(t, dir)
	t.Chdir(dir)
	var stdout bytes.Buffer
	boundsPath := filepath.Join(dir, "superpixel_bounds.txt")
	if err := run(context.Background(), append([]string{"-bounds", boundsPath}, inputs...), &stdout); err != nil {
		t.Fatalf("%v\n", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "sp_map.00006-bodies.n5", "attributes.json")); err != nil {
		t.Errorf("default output not written: %v\n", err)
	}
	bounds, err := os.ReadFile(boundsPath)
	if err != nil {
		t.Fatalf("%v\n", err)
	}
	if !strings.Contains(string(bounds), "5\t1\t0 0 2 2 2\n") || !strings.Contains(string(bounds), "6\t2\t0 0 2 2 2\n") {
		t.Errorf("bad bounds file:\n%s\n", bounds)
	}
	err = run(context.Background(), append([]string{"-bounds", boundsPath, "-force"}, inputs...), &stdout)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("expected refusal to overwrite bounds file, got %v\n", err)
	}
}

func TestRunErrors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	inputs := writeExport(t, dir)
	var stdout bytes.Buffer

	output := filepath.Join(dir, "out.h5")
	var extErr *storage.ExtensionError
	if err := run(ctx, append([]string{"-output", output}, inputs...), &stdout); !errors.As(err, &extErr) {
		t.Errorf("expected extension error, got %v\n", err)
	}

	// plane 7 has no superpixel map
	extra := filepath.Join(dir, "sp_map.00007.png")
	data, _ := os.ReadFile(inputs[2])
	os.WriteFile(extra, data, 0644)
	output = filepath.Join(dir, "bad.n5")
	err := run(ctx, append([]string{"-output", output}, append(inputs, extra)...), &stdout)
	var missing *labels.MissingPlaneIndexError
	if !errors.As(err, &missing) || missing.Plane != 7 {
		t.Errorf("expected missing plane 7, got %v\n", err)
	}
	if _, err := os.Stat(output); err == nil {
		t.Errorf("output written despite failure\n")
	}

	noPlane := filepath.Join(dir, "superpixels.png")
	os.WriteFile(noPlane, data, 0644)
	var nameErr *raveler.PlaneFilenameError
	if err := run(ctx, append(inputs[:2:2], noPlane), &stdout); !errors.As(err, &nameErr) {
		t.Errorf("expected plane filename error, got %v\n", err)
	}

	if err := run(ctx, inputs[:2], &stdout); !errors.Is(err, errUsage) {
		t.Errorf("expected usage error, got %v\n", err)
	}
	if err := run(ctx, []string{"-h"}, &stdout); !errors.Is(err, flag.ErrHelp) {
		t.Errorf("expected help, got %v\n", err)
	}
	if err := run(ctx, append([]string{"-format", "hdf5"}, inputs...), &stdout); err == nil {
		t.Errorf("expected error for unknown format\n")
	}
}

func TestRunVerify(t *testing.T) {
	dir := t.TempDir()
	inputs := writeExport(t, dir)
	var stdout bytes.Buffer
	if err := run(context.Background(), append([]string{"-verify"}, inputs...), &stdout); err != nil {
		t.Fatalf("%v\n", err)
	}
	if !strings.Contains(stdout.String(), "2 planes, 4 superpixels, 3 segments, 3 bodies") {
		t.Errorf("unexpected verify report:\n%s\n", stdout.String())
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 4 {
		t.Errorf("verify wrote files: %v\n", entries)
	}

	os.WriteFile(inputs[1], []byte("10 100\n"), 0644)
	if err := run(context.Background(), append([]string{"-verify"}, inputs...), &stdout); err == nil {
		t.Errorf("expected verification failure\n")
	}
}

func TestRunVersion(t *testing.T) {
	var stdout bytes.Buffer
	if err := run(context.Background(), []string{"-version"}, &stdout); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(stdout.String(), "sp2body "+gitVersion) {
		t.Errorf("unexpected version output %q", stdout.String())
	}
}

func TestRunFailedWriteLeavesNothing(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	inputs := writeExport(t, dir)
	boundsPath := filepath.Join(dir, "superpixel_bounds.txt")

	// the bucket directory doesn't exist, so the volume write fails after relabeling
	var stdout bytes.Buffer
	output := "file://" + filepath.ToSlash(filepath.Join(dir, "missing")) + "/out.n5"
	err := run(ctx, append([]string{"-output", output, "-bounds", boundsPath}, inputs...), &stdout)
	if err == nil {
		t.Fatalf("expected write failure for %s\n", output)
	}
	if !strings.Contains(stdout.String(), "Writing") {
		t.Errorf("expected failure during write, got output:\n%s\n", stdout.String())
	}
	if _, err := os.Stat(boundsPath); !os.IsNotExist(err) {
		t.Errorf("bounds file left behind after failed write: %v\n", err)
	}

	// compression the format can't write is refused before any plane is read
	stdout.Reset()
	output = filepath.Join(dir, "out.n5")
	err = run(ctx, append([]string{"-output", output, "-compression", "lz4", "-bounds", boundsPath}, inputs...), &stdout)
	if err == nil || !strings.Contains(err.Error(), "lz4") {
		t.Fatalf("expected n5 compression error, got %v\n", err)
	}
	if strings.Contains(stdout.String(), "Relabeling") {
		t.Errorf("planes relabeled before compression was checked:\n%s\n", stdout.String())
	}
	for _, path := range []string{boundsPath, output} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("%s left behind after rejected run: %v\n", path, err)
		}
	}
}
