package aggregator

import "fmt"

type missingDependencyError struct{ key string }

func (e *missingDependencyError) Error() string {
	return fmt.Sprintf("dependency container %q is not registered", e.key)
}

func errMissingDependency(key string) error {
	return &missingDependencyError{key: key}
}
