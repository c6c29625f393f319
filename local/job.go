// Package local runs the mapper and reducer on one machine, standing in for
// the partition, shuffle and sort steps of a streaming map/reduce framework.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/google/uuid"

	. "github.com/ogzhanolguncu/comment-wordcount/map_reduce"
	"github.com/ogzhanolguncu/comment-wordcount/streaming"
)

var ErrMissingInput = fmt.Errorf("no input files")

type Config struct {
	Inputs   []string
	InterDir string
	OutDir   string
	NReduce  int
	Verbose  bool
}

type Job struct {
	mapper      Mapper
	reducer     Reducer
	taskTracker *TaskTracker
	results     *Accumulator
	id          string
	interDir    string
	outDir      string
	ownsDir     bool
	inputs      []string
	nReduce     int
	verbose     bool
}

func NewJob(cfg Config, m Mapper, r Reducer) (*Job, error) {
	if len(cfg.Inputs) == 0 {
		return nil, ErrMissingInput
	}
	if cfg.NReduce <= 0 {
		return nil, fmt.Errorf("reduce count must be positive, got %d", cfg.NReduce)
	}

	id := uuid.New().String()
	interDir := cfg.InterDir
	ownsDir := interDir == ""
	if ownsDir {
		interDir = filepath.Join(os.TempDir(), fmt.Sprintf("wc-%s", id))
	}
	outDir := cfg.OutDir
	if outDir == "" {
		outDir = "."
	}

	for _, dir := range []string{interDir, outDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return &Job{
		mapper:      m,
		reducer:     r,
		taskTracker: NewTaskTracker(cfg.NReduce),
		results:     NewAccumulator(),
		id:          id,
		interDir:    interDir,
		outDir:      outDir,
		ownsDir:     ownsDir,
		inputs:      cfg.Inputs,
		nReduce:     cfg.NReduce,
		verbose:     cfg.Verbose,
	}, nil
}

func (j *Job) ID() string {
	return j.id
}

// Run executes every map task and then every reduce task, one at a time.
// The first failing task aborts the job.
func (j *Job) Run(ctx context.Context) error {
	j.results = NewAccumulator()
	j.taskTracker.InitMapTasks(j.inputs)
	if err := j.runPhase(ctx); err != nil {
		return err
	}

	if err := j.taskTracker.TransitionToReducePhase(); err != nil {
		return fmt.Errorf("job %s: %w", j.id, err)
	}
	if err := j.runPhase(ctx); err != nil {
		return err
	}
	if !j.taskTracker.IsReducePhaseDone() {
		return fmt.Errorf("job %s: reduce phase incomplete", j.id)
	}

	j.logf("Job %s complete, %d keys across %d partitions", j.id, j.results.Len(), j.nReduce)
	return nil
}

func (j *Job) runPhase(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("job %s cancelled: %w", j.id, err)
		}

		task := j.taskTracker.NextTask()
		if task == nil {
			return nil
		}
		j.logf("Job %s: starting %s task %d (%s)", j.id, task.Type, task.ID, task.Input)

		var err error
		switch task.Type {
		case MapTask:
			err = j.executeMapTask(task.ID, task.Input)
		case ReduceTask:
			err = j.executeReduceTask(task.ID)
		}
		if err != nil {
			j.taskTracker.MarkFailed(task, err)
			return fmt.Errorf("%s task %d failed: %w", task.Type, task.ID, err)
		}
		j.taskTracker.MarkComplete(task)
	}
}

func (j *Job) executeMapTask(mapID int, input string) error {
	content, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	kvs, err := j.mapper.Map(input, string(content))
	if err != nil {
		return err
	}

	files := make([]*os.File, j.nReduce)
	encoders := make([]*json.Encoder, j.nReduce)
	defer func() {
		for _, f := range files {
			if f != nil {
				f.Close()
			}
		}
	}()

	for i := 0; i < j.nReduce; i++ {
		files[i], err = os.Create(j.intermediateFile(mapID, i))
		if err != nil {
			return err
		}
		encoders[i] = json.NewEncoder(files[i])
	}

	for _, kv := range kvs {
		if err := encoders[ihash(kv.Key)%j.nReduce].Encode(&kv); err != nil {
			return err
		}
	}

	for i, f := range files {
		if err := f.Close(); err != nil {
			return err
		}
		files[i] = nil
	}

	j.logf("Map %d: wrote %d pairs from %s", mapID, len(kvs), input)
	return nil
}

func (j *Job) executeReduceTask(reduceID int) error {
	var kvs []KeyValue

	for mapID := range j.inputs {
		file, err := os.Open(j.intermediateFile(mapID, reduceID))
		if err != nil {
			return err
		}

		dec := json.NewDecoder(file)
		for dec.More() {
			var kv KeyValue
			if err := dec.Decode(&kv); err != nil {
				file.Close()
				return fmt.Errorf("decoding %s: %w", file.Name(), err)
			}
			kvs = append(kvs, kv)
		}
		file.Close()
	}

	sort.SliceStable(kvs, func(a, b int) bool {
		return kvs[a].Key < kvs[b].Key
	})

	totals, err := j.reducer.Reduce(Lines(kvs))
	if err != nil {
		return err
	}

	out, err := os.Create(filepath.Join(j.outDir, fmt.Sprintf("part-%05d", reduceID)))
	if err != nil {
		return err
	}
	defer out.Close()

	if err := streaming.WritePairs(out, totals); err != nil {
		return err
	}

	for _, kv := range totals {
		n, err := strconv.Atoi(kv.Value)
		if err != nil {
			return fmt.Errorf("reducer emitted %q for %q: %w", kv.Value, kv.Key, ErrBadCount)
		}
		j.results.Add(kv.Key, n)
	}

	j.logf("Reduce %d: %d pairs in, %d keys out", reduceID, len(kvs), len(totals))
	return out.Close()
}

// Results returns the totals of every partition, keyed in the order the
// reduce tasks emitted them.
func (j *Job) Results() []KeyValue {
	return j.results.Totals()
}

// Cleanup removes the intermediate directory if the job created it. A
// directory supplied through Config only loses the job's mr-* files.
func (j *Job) Cleanup() {
	if !j.ownsDir {
		for mapID := range j.inputs {
			for reduceID := 0; reduceID < j.nReduce; reduceID++ {
				if err := os.Remove(j.intermediateFile(mapID, reduceID)); err != nil && !os.IsNotExist(err) {
					log.Printf("Error removing intermediate file: %v", err)
				}
			}
		}
		return
	}
	if err := os.RemoveAll(j.interDir); err != nil {
		log.Printf("Error cleaning up intermediate directory: %v", err)
	}
}

func (j *Job) intermediateFile(mapID, reduceID int) string {
	return filepath.Join(j.interDir, fmt.Sprintf("mr-%d-%d", mapID, reduceID))
}

func (j *Job) logf(format string, args ...any) {
	if j.verbose {
		log.Printf(format, args...)
	}
}

// ihash returns a hash value for a key
func ihash(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() & 0x7fffffff)
}
