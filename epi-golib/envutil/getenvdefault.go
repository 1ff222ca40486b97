package envutil

import (
	"log"
	"os"
	"strconv"

	"github.com/epiclass/epiatlas/epi-golib/errors"
)

// GetenvDefault gets the value of an environment variable, or returns the
// specified default value if that variable is not set.
func GetenvDefault(name, defaultValue string) string {
	val, found := os.LookupEnv(name)
	if !found {
		return defaultValue
	}
	return val
}

// GetenvDefaultInt gets an environment variable as an int, or else returns the default.
// A value that is not an integer is fatal.
func GetenvDefaultInt(name string, defaultVal int) int {
	val, found, err := LookupInt(name)
	if err != nil {
		log.Fatal(err)
	}
	if !found {
		return defaultVal
	}
	return val
}

// LookupInt reads an integer environment variable, reporting whether it was set.
func LookupInt(name string) (int, bool, error) {
	val, found := os.LookupEnv(name)
	if !found || val == "" {
		return 0, false, nil
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return 0, true, errors.Config("environment variable %s should be an integer: %v", name, err)
	}
	return intVal, true, nil
}
