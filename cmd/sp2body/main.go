package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/janelia-flyem/sp2body/config"
	"github.com/janelia-flyem/sp2body/dvid"
	"github.com/janelia-flyem/sp2body/labels"
	"github.com/janelia-flyem/sp2body/raveler"
	"github.com/janelia-flyem/sp2body/stack"
	"github.com/janelia-flyem/sp2body/storage"

	// volume formats
	_ "github.com/janelia-flyem/sp2body/storage/labelvol"
	_ "github.com/janelia-flyem/sp2body/storage/n5"

	// bucket URL schemes for -output
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"
)

const helpMessage = `
sp2body converts a stack of Raveler superpixel images into a single body-labeled
volume.  Each plane's superpixels are mapped to segments using that plane's entries
in the superpixel to segment map, then segments are mapped to bodies.  Every
superpixel and segment must be mapped; an unmapped label stops the run and no output
is written.

Usage: sp2body [options] <superpixel_to_segment_map.txt> <segment_to_body_map.txt> <image> [image ...]

	Superpixel images must end with their plane number, e.g., sp_map.00100.png.
	Output may be a local path or a bucket URL (gs://, s3://, file://).

	-output       =string   Output volume (default: <cwd>/<first image name>-bodies.n5)
	-config       =string   TOML configuration file
	-format       =string   Output format: n5 or labelvol (default: by output extension)
	-compression  =string   Output compression, e.g., gzip, zstd, raw (n5) or lz4, snappy (labelvol)
	-numcpu       =number   Number of planes processed at once (default: all CPUs)
	-bounds       =string   Also write superpixel bounding boxes and volumes to this file
	-verify       (flag)    Only verify mappings against the image planes; write nothing
	-force        (flag)    Overwrite existing output once the new volume is fully written
	-verbose      (flag)    Run in verbose mode
	-version      (flag)    Print version and exit
	-h, -help     (flag)    Show help message
`

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdout)
	stop()
	dvid.Shutdown()
	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp):
		fmt.Print(helpMessage)
	case errors.Is(err, errUsage):
		if err != errUsage {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		}
		fmt.Fprint(os.Stderr, helpMessage)
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	flags := flag.NewFlagSet("sp2body", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	var (
		output      = flags.String("output", "", "")
		configFile  = flags.String("config", "", "")
		format      = flags.String("format", "", "")
		compression = flags.String("compression", "", "")
		numCPU      = flags.Int("numcpu", 0, "")
		boundsFile  = flags.String("bounds", "", "")
		verifyOnly  = flags.Bool("verify", false, "")
		force       = flags.Bool("force", false, "")
		showHelp    = flags.Bool("help", false, "")
		showVersion = flags.Bool("version", false, "")
	)
	flags.BoolVar(showHelp, "h", false, "Show help message")
	flags.BoolVar(&dvid.Verbose, "verbose", false, "")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if *showHelp {
		return flag.ErrHelp
	}
	if *showVersion {
		fmt.Fprintf(stdout, "sp2body %s\n", gitVersion)
		return nil
	}
	if flags.NArg() < 3 {
		return errUsage
	}
	if dvid.Verbose {
		dvid.SetLogMode(dvid.DebugMode)
	}

	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			return err
		}
	}
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "format":
			cfg.Output.Format = *format
		case "compression":
			cfg.Output.Compression = *compression
		case "numcpu":
			cfg.Processing.NumCPU = *numCPU
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}
	cfg.Logging.SetLogger()
	dvid.Infof("sp2body code version: %s\n", gitVersion)

	re, err := cfg.PlaneRegexp()
	if err != nil {
		return err
	}
	opts := stack.Options{
		NumWorkers:    cfg.Processing.NumCPU,
		PlanePattern:  re,
		ComputeBounds: *boundsFile != "",
	}
	spToSegPath, segToBodyPath, imagePaths := flags.Arg(0), flags.Arg(1), flags.Args()[2:]
	files, err := opts.PlaneFiles(imagePaths)
	if err != nil {
		return err
	}

	// Settle the output before any heavy lifting.
	var engine storage.Engine
	if !*verifyOnly {
		if *output == "" {
			name := cfg.Output.Format
			if name == "" {
				name = "n5"
			}
			if engine, err = storage.GetEngine(name); err != nil {
				return err
			}
			*output, err = defaultOutput(imagePaths[0], engine.Extension())
			if err != nil {
				return err
			}
		}
		if engine, err = storage.SelectEngine(*output, cfg.Output.Format); err != nil {
			return err
		}
		if err := engine.CheckConfig(cfg.StorageConfig()); err != nil {
			return fmt.Errorf("%s output: %w", engine.GetName(), err)
		}
		if !*force && !storage.IsBucketURL(*output) {
			if _, err := os.Stat(*output); err == nil {
				return fmt.Errorf("%s: %w; use -force to overwrite", *output, storage.ErrExists)
			}
		}
	}
	if *boundsFile != "" {
		if _, err := os.Stat(*boundsFile); err == nil {
			return fmt.Errorf("bounds file %s already exists; delete first to recreate", *boundsFile)
		}
	}

	fmt.Fprintf(stdout, "Parsing mappings...\n")
	maps, err := raveler.LoadMappings(spToSegPath, segToBodyPath)
	if err != nil {
		return err
	}
	if *verifyOnly {
		planes := make([]labels.PlaneIndex, len(files))
		for i, f := range files {
			planes[i] = f.Plane
		}
		report := raveler.Verify(maps, planes)
		fmt.Fprint(stdout, report)
		if !report.OK() {
			return fmt.Errorf("mappings failed verification with %d errors", report.NumProblems)
		}
		return nil
	}

	fmt.Fprintf(stdout, "Relabeling %d planes...\n", len(files))
	result, err := stack.Build(ctx, maps, files, raveler.PNGDecoder{}, opts)
	if err != nil {
		return err
	}
	if *boundsFile != "" {
		if err := writeBounds(*boundsFile, result.Bounds); err != nil {
			return err
		}
	}

	fmt.Fprintf(stdout, "Writing %s to %s...\n", humanize.Bytes(result.Volume.NumBytes()), *output)
	if err := storage.WriteVolume(ctx, *output, result.Volume, engine.GetName(), cfg.StorageConfig(), *force); err != nil {
		if *boundsFile != "" {
			os.Remove(*boundsFile)
		}
		return err
	}
	fmt.Fprintf(stdout, "DONE: %d planes, %d bodies in %s.\n", result.Volume.Depth(), result.Bodies.Len(), result.Elapsed)
	return nil
}

// defaultOutput names the output after the first image, in the current directory.
func defaultOutput(firstImage, ext string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	base := filepath.Base(firstImage)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(cwd, name+"-bodies"+ext), nil
}

func writeBounds(filename string, bounds map[labels.PlaneIndex][]labels.Bounds) error {
	f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	planes := make([]labels.PlaneIndex, 0, len(bounds))
	for z := range bounds {
		planes = append(planes, z)
	}
	sort.Slice(planes, func(i, j int) bool { return planes[i] < planes[j] })
	err = raveler.WriteBoundsHeader(w)
	for _, z := range planes {
		if err != nil {
			break
		}
		err = raveler.WriteBounds(w, z, bounds[z])
	}
	if err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(filename)
	}
	return err
}
