package local

import "fmt"

type TaskState int

const (
	TaskIdle TaskState = iota
	TaskInProgress
	TaskCompleted
	TaskFailed
)

func (s TaskState) String() string {
	switch s {
	case TaskIdle:
		return "idle"
	case TaskInProgress:
		return "in-progress"
	case TaskCompleted:
		return "completed"
	case TaskFailed:
		return "failed"
	}
	return fmt.Sprintf("TaskState(%d)", int(s))
}

type TaskType int

const (
	MapTask TaskType = iota
	ReduceTask
)

func (t TaskType) String() string {
	if t == MapTask {
		return "map"
	}
	return "reduce"
}

type Task struct {
	Input string
	Err   error
	ID    int
	Type  TaskType
	State TaskState
}

// TaskTracker hands out map tasks first and reduce tasks only once every map
// task has completed. A failed task is never retried.
type TaskTracker struct {
	tasks            []*Task
	nReduce          int
	hasStartedReduce bool
}

func NewTaskTracker(nReduce int) *TaskTracker {
	return &TaskTracker{nReduce: nReduce}
}

func (t *TaskTracker) InitMapTasks(files []string) {
	t.tasks = make([]*Task, 0, len(files))
	for i, file := range files {
		t.tasks = append(t.tasks, &Task{
			ID:    i,
			Type:  MapTask,
			State: TaskIdle,
			Input: file,
		})
	}
	t.hasStartedReduce = false
}

func (t *TaskTracker) TransitionToReducePhase() error {
	if !t.IsMapPhaseDone() {
		return fmt.Errorf("map phase not complete")
	}

	t.tasks = make([]*Task, 0, t.nReduce)
	for i := 0; i < t.nReduce; i++ {
		t.tasks = append(t.tasks, &Task{
			ID:    i,
			Type:  ReduceTask,
			State: TaskIdle,
			Input: fmt.Sprintf("%d", i),
		})
	}

	t.hasStartedReduce = true
	return nil
}

// NextTask returns the next idle task and marks it in progress, or nil when
// nothing is left to run in the current phase.
func (t *TaskTracker) NextTask() *Task {
	for _, task := range t.tasks {
		if task.State == TaskIdle {
			task.State = TaskInProgress
			return task
		}
	}
	return nil
}

func (t *TaskTracker) MarkComplete(task *Task) {
	task.State = TaskCompleted
	task.Err = nil
}

func (t *TaskTracker) MarkFailed(task *Task, err error) {
	task.State = TaskFailed
	task.Err = err
}

func (t *TaskTracker) IsMapPhaseDone() bool {
	if t.hasStartedReduce {
		return true
	}
	for _, task := range t.tasks {
		if task.Type == MapTask && task.State != TaskCompleted {
			return false
		}
	}
	return true
}

func (t *TaskTracker) IsReducePhaseDone() bool {
	if !t.hasStartedReduce {
		return false
	}
	for _, task := range t.tasks {
		if task.Type == ReduceTask && task.State != TaskCompleted {
			return false
		}
	}
	return true
}
