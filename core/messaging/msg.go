package messaging

import (
	"reflect"

	"github.com/puzpuzpuz/xsync/v3"
)

// msgTyper lets a message choose its own routing name instead of the
// reflected "pkg/path.TypeName".
type msgTyper interface{ MsgType() string }

var typeNames = xsync.NewMapOf[reflect.Type, string]()

// MsgTypeFor returns the type tag used for messages of type T.
func MsgTypeFor[T any]() string {
	var z T
	return tagOf(any(z), reflect.TypeFor[T]())
}

// MsgTypeOf returns the type tag of the dynamic type of msg.
func MsgTypeOf(msg any) string {
	return tagOf(msg, reflect.TypeOf(msg))
}

// tagOf asks v for its MsgType, substituting a fresh value for nil pointers
// so a value receiver is never called through nil.
func tagOf(v any, t reflect.Type) string {
	if t != nil && t.Kind() == reflect.Pointer {
		if rv := reflect.ValueOf(v); !rv.IsValid() || rv.IsNil() {
			v = reflect.New(t.Elem()).Interface()
		}
	}
	if mt, ok := v.(msgTyper); ok {
		return mt.MsgType()
	}
	return typeName(t)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	name, _ := typeNames.LoadOrCompute(t, func() string {
		et := t
		if et.Kind() == reflect.Pointer {
			et = et.Elem()
		}
		if et.PkgPath() == "" || et.Name() == "" {
			return et.String()
		}
		return et.PkgPath() + "." + et.Name()
	})
	return name
}
