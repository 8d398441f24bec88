package confloader

import "reflect"

func reflectTypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil))
}
