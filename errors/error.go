package errors

import (
	"runtime"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Error is the framework error carrier. Key identifies the condition for
// logging and client payloads, Status is the HTTP status the pipeline should
// answer with (0 means unclassified), Caller points at the wrap site.
type Error struct {
	Key         string                 `json:"key"`
	Err         error                  `json:"-"`
	Status      int                    `json:"-"`
	Caller      string                 `json:"-"`
	ErrorString string                 `json:"error,omitempty"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

func (e Error) Error() string {
	return e.ErrorString
}

func (e Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match taxonomy values by key regardless of the wrapped
// cause.
func (e Error) Is(target error) bool {
	if t, ok := target.(Error); ok {
		return e.Key == t.Key
	}
	return false
}

func (e Error) ToLogFields() logrus.Fields {
	return logrus.Fields{
		"key":    e.Key,
		"error":  e.Err,
		"caller": e.Caller,
	}
}

// NewError wraps err under the receiver's key and status, capturing the
// caller unless err already carries one.
func (e Error) NewError(err error) Error {
	source := ""
	if wrapped, ok := err.(Error); ok {
		source = wrapped.Caller
	}
	if source == "" {
		source = FileWithLineNum()
	}

	n := Error{Key: e.Key, Err: err, Caller: source, Status: e.Status}

	cause := e.Err
	if cause == nil {
		cause = err
	}
	if cause != nil {
		n.ErrorString = cause.Error()
	} else {
		n.ErrorString = e.Key
	}

	return n
}

func SetData(err error, key string, value interface{}) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(Error); ok {
		if e.Data == nil {
			e.Data = map[string]interface{}{}
		}
		e.Data[key] = value
		return e
	}
	return err
}

var sourceDir string

func init() {
	_, file, _, _ := runtime.Caller(0)
	sourceDir = strings.TrimSuffix(file, "error.go")
}

// FileWithLineNum returns the first caller outside this package.
func FileWithLineNum() string {
	for i := 2; i < 15; i++ {
		_, file, line, ok := runtime.Caller(i)
		if ok && (!strings.HasPrefix(file, sourceDir) || strings.HasSuffix(file, "_test.go")) {
			return file + ":" + strconv.FormatInt(int64(line), 10)
		}
	}
	return ""
}
