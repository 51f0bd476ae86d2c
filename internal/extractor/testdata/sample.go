package sample

import "fmt"

// Version is the application version.
const Version = "1.0.0"

// Color is a palette entry.
type Color int

const (
	// Red is the first color.
	Red Color = iota
	// Green follows red.
	Green
	Blue
)

const (
	// StatusOK indicates success.
	StatusOK = 200
	StatusError = 500
)

// GlobalVar is a global variable.
var GlobalVar = "hello"

// Base is a base struct.
type Base struct {
	ID int
}

// User is a complex struct.
type User struct {
	Base
	// Name is the display name.
	Name, Nickname string `json:"name"`
	Age            int    `json:"age"` // years
	secret         string
}

// Handler is an interface.
type Handler interface {
	fmt.Stringer
	// Handle processes data.
	Handle(ctx string, data interface{}) (int, error)
	Close()
}

// MyFunc is a function.
func MyFunc(a int, b string) bool {
	return true
}

func helper() {}

// MyMethod is a method.
func (u *User) MyMethod(msg string) {
	fmt.Println(msg)
}
