package workflow

import (
	"fmt"
	"reflect"
	"strings"
)

// ActivityID identifies an activity by the import path and name of its struct type.
//
// Example: ActivityID{Module: "github.com/nomis52/gocti/salesactivity", Type: "FindActivityType"}
type ActivityID struct {
	// Module is the full import path of the package containing the activity.
	Module string

	// Type is the struct name of the activity.
	Type string
}

// String returns "Module.Type".
func (id ActivityID) String() string {
	return fmt.Sprintf("%s.%s", id.Module, id.Type)
}

// ShortString returns the last path element of the module plus the type,
// e.g. "salesactivity.FindActivityType".
func (id ActivityID) ShortString() string {
	if id.Module == "" {
		return id.Type
	}
	pkg := id.Module
	if i := strings.LastIndex(pkg, "/"); i >= 0 && i < len(pkg)-1 {
		pkg = pkg[i+1:]
	}
	return pkg + "." + id.Type
}

// MarshalText lets ActivityID be used as a JSON map key.
func (id ActivityID) MarshalText() ([]byte, error) {
	return []byte(id.ShortString()), nil
}

// GetActivityID returns the ActivityID for an activity. The activity must be a pointer to a struct.
func GetActivityID(activity Activity) ActivityID {
	t := reflect.TypeOf(activity).Elem()
	return ActivityID{
		Module: t.PkgPath(),
		Type:   t.Name(),
	}
}
