package workqueue

import (
	"fmt"
	"strings"
)

// Class selects the urgency tier of a work item. Every class has its own
// queue and its own fixed pool of workers running at the class priority.
//
// Classes are ordered by urgency: Normal < Critical < HyperCritical.
type Class int

const (
	Normal Class = iota
	Critical
	HyperCritical

	// NumClasses is the number of classes; dispatch tables are sized by it.
	NumClasses
)

var classNames = [NumClasses]string{
	Normal:        "Normal",
	Critical:      "Critical",
	HyperCritical: "HyperCritical",
}

// Classes returns all classes in ascending urgency.
func Classes() []Class {
	out := make([]Class, 0, NumClasses)
	for c := Normal; c < NumClasses; c++ {
		out = append(out, c)
	}
	return out
}

// Valid reports whether c names one of the known classes.
func (c Class) Valid() bool {
	return c >= Normal && c < NumClasses
}

func (c Class) String() string {
	if !c.Valid() {
		return "Unknown"
	}
	return classNames[c]
}

// ParseClass maps a class name (case-insensitive) back to a Class.
func ParseClass(name string) (Class, error) {
	for c := Normal; c < NumClasses; c++ {
		if strings.EqualFold(classNames[c], name) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidClass, name)
}
