package engine

// CheckLimit is the single pre-flight gate between planning and execution.
// Either the whole plan proceeds or nothing executes.
func CheckLimit(taskCount, maxTasks int) error {
	if maxTasks > 0 && taskCount > maxTasks {
		return &LimitError{Requested: taskCount, Limit: maxTasks}
	}
	return nil
}
