package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"unicode/utf8"

	"github.com/ogzhanolguncu/comment-wordcount/local"
	"github.com/ogzhanolguncu/comment-wordcount/map_reduce"
	"github.com/ogzhanolguncu/comment-wordcount/streaming"
)

func main() {
	log.SetPrefix("wordcount: ")

	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("wordcount", flag.ContinueOnError)
	var (
		mode            = fs.String("mode", "", "Run as 'map', 'reduce' or 'local'")
		field           = fs.Int("field", map_reduce.DefaultCommentField, "Index of the CSV column to tokenize")
		comma           = fs.String("comma", ",", "CSV field delimiter")
		inputFiles      = fs.String("input", "", "Comma-separated list of input files (local mode)")
		nReduce         = fs.Int("reduce", 1, "Number of reduce partitions (local mode)")
		intermediateDir = fs.String("intermediate-dir", "", "Directory for intermediate files (local mode)")
		outputDir       = fs.String("output", ".", "Directory for part files (local mode)")
		inMemory        = fs.Bool("in-memory", false, "Run local mode without intermediate files, printing totals to stdout")
		verbose         = fs.Bool("verbose", false, "Log task progress to stderr")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	mapper, err := newMapper(*field, *comma)
	if err != nil {
		return err
	}
	reducer := &map_reduce.Aggregator{}

	switch *mode {
	case "map":
		return streaming.RunMapper(stdin, stdout, mapper)
	case "reduce":
		return streaming.RunReducer(stdin, stdout, reducer)
	case "local":
		cfg := local.Config{
			InterDir: *intermediateDir,
			OutDir:   *outputDir,
			NReduce:  *nReduce,
			Verbose:  *verbose,
		}
		if *inputFiles != "" {
			cfg.Inputs = strings.Split(*inputFiles, ",")
		}
		if *inMemory {
			return runInMemory(mapper, reducer, cfg.Inputs, stdout)
		}
		return runLocal(mapper, reducer, cfg)
	default:
		return fmt.Errorf("invalid mode %q, expected map, reduce or local", *mode)
	}
}

func newMapper(field int, comma string) (*map_reduce.CommentTokenizer, error) {
	if field < 0 {
		return nil, fmt.Errorf("field index must not be negative, got %d", field)
	}
	if utf8.RuneCountInString(comma) != 1 {
		return nil, fmt.Errorf("delimiter must be a single character, got %q", comma)
	}
	r, _ := utf8.DecodeRuneInString(comma)
	return &map_reduce.CommentTokenizer{Field: field, Comma: r}, nil
}

func runInMemory(m map_reduce.Mapper, r map_reduce.Reducer, files []string, stdout io.Writer) error {
	if len(files) == 0 {
		return local.ErrMissingInput
	}

	inputs := make(map[string]string, len(files))
	for _, f := range files {
		content, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		inputs[f] = string(content)
	}

	totals, err := map_reduce.NewRunner(m, r).Run(inputs)
	if err != nil {
		return err
	}
	return streaming.WritePairs(stdout, totals)
}

func runLocal(m map_reduce.Mapper, r map_reduce.Reducer, cfg local.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	job, err := local.NewJob(cfg, m, r)
	if err != nil {
		return err
	}
	defer job.Cleanup()

	if cfg.Verbose {
		log.Printf("Starting job %s: %d inputs, %d partitions", job.ID(), len(cfg.Inputs), cfg.NReduce)
	}
	return job.Run(ctx)
}
