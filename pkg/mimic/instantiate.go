package mimic

import (
	"fmt"
	"reflect"
)

// CallConstructor invokes a constructor function with positional
// arguments. Generated factories wrap their target's constructor with it
// so every constructor failure surfaces as the same error shape.
func CallConstructor(fn any, args []any) (result any, err error) {
	value := reflect.ValueOf(fn)
	if value.Kind() != reflect.Func {
		return nil, NewDoubleError(ReasonConstructorFailure, "", "constructor is %T, not a function", fn)
	}
	fnType := value.Type()

	if err := checkConstructorArity(fnType, len(args)); err != nil {
		return nil, err
	}

	in, err := constructorArgs(fnType, args)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = NewDoubleError(ReasonConstructorFailure, "", "constructor panicked: %v", r)
		}
	}()

	out := value.Call(in)
	return constructorResult(fnType, out)
}

func checkConstructorArity(fnType reflect.Type, got int) error {
	want := fnType.NumIn()
	if fnType.IsVariadic() {
		if got < want-1 {
			return NewDoubleError(ReasonConstructorFailure, "",
				"constructor takes at least %d arguments, got %d", want-1, got)
		}
		return nil
	}
	if got != want {
		return NewDoubleError(ReasonConstructorFailure, "",
			"constructor takes %d arguments, got %d", want, got)
	}
	return nil
}

func constructorArgs(fnType reflect.Type, args []any) ([]reflect.Value, error) {
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		paramType := constructorParamType(fnType, i)
		if arg == nil {
			// Untyped nil needs the parameter's zero value
			in[i] = reflect.Zero(paramType)
			continue
		}
		value := reflect.ValueOf(arg)
		if !value.Type().AssignableTo(paramType) {
			return nil, NewDoubleError(ReasonConstructorFailure, "",
				"argument %d: %s is not assignable to %s", i, value.Type(), paramType)
		}
		in[i] = value
	}
	return in, nil
}

func constructorParamType(fnType reflect.Type, i int) reflect.Type {
	last := fnType.NumIn() - 1
	if fnType.IsVariadic() && i >= last {
		return fnType.In(last).Elem()
	}
	return fnType.In(i)
}

func constructorResult(fnType reflect.Type, out []reflect.Value) (any, error) {
	switch fnType.NumOut() {
	case 1:
		return out[0].Interface(), nil
	case 2:
		if errValue := out[1].Interface(); errValue != nil {
			err, ok := errValue.(error)
			if !ok {
				err = fmt.Errorf("%v", errValue)
			}
			return nil, &DoubleError{
				Reason:  ReasonConstructorFailure,
				Message: "constructor returned an error",
				Cause:   err,
			}
		}
		return out[0].Interface(), nil
	default:
		return nil, NewDoubleError(ReasonConstructorFailure, "",
			"constructor returns %d values, want 1 or 2", fnType.NumOut())
	}
}

// Instantiate builds a registered double by name. When invokeConstructor
// is true the target's real constructor runs with the given arguments and
// its result becomes the double's embedded target.
func Instantiate(t TestingT, name string, invokeConstructor bool, args ...any) (Configurable, error) {
	factory, ok := DefaultDoubleRegistry.Get(name)
	if !ok {
		return nil, NewDoubleError(ReasonUnknownType, name, "no generated double with this name")
	}
	return instantiate(t, factory, invokeConstructor, args, nil)
}

func instantiate(t TestingT, factory DoubleFactory, invokeConstructor bool, args []any, opts []Option) (Configurable, error) {
	if invokeConstructor {
		if factory.Construct == nil {
			return nil, NewDoubleError(ReasonConstructorFailure, factory.Target,
				"target has no recognized constructor")
		}
		target, err := factory.Construct(args)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithTarget(target))
	}
	return factory.New(t, opts...), nil
}
