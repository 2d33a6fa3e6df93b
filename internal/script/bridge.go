package script

import (
	"fmt"
	"reflect"

	lua "github.com/yuin/gopher-lua"
)

const valueTypeName = "holonet.value"

// toLua converts a Go value. Scalars, []any and map[string]any are copied;
// everything else is wrapped as a holonet.value userdata.
func toLua(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case lua.LValue:
		return val
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int32:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float32:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []any:
		t := L.NewTable()
		for i, item := range val {
			t.RawSetInt(i+1, toLua(L, item))
		}
		return t
	case []string:
		t := L.NewTable()
		for i, item := range val {
			t.RawSetInt(i+1, lua.LString(item))
		}
		return t
	case map[string]any:
		t := L.NewTable()
		for k, item := range val {
			t.RawSetString(k, toLua(L, item))
		}
		return t
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return lua.LNil
	}
	ud := L.NewUserData()
	ud.Value = v
	L.SetMetatable(ud, L.GetTypeMetatable(valueTypeName))
	return ud
}

// toGo converts a Lua value. Integral numbers become int; tables become
// []any when they are sequences and map[string]any otherwise.
func toGo(lv lua.LValue) any {
	return toGoVisited(lv, make(map[*lua.LTable]bool))
}

func toGoVisited(lv lua.LValue, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case nil, *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LUserData:
		return v.Value
	case *lua.LTable:
		if visited[v] {
			return nil
		}
		visited[v] = true
		return tableToGo(v, visited)
	default:
		return nil
	}
}

func tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	n := t.Len()
	count := 0
	t.ForEach(func(_, _ lua.LValue) { count++ })

	if n > 0 && n == count {
		arr := make([]any, n)
		for i := 1; i <= n; i++ {
			arr[i-1] = toGoVisited(t.RawGetInt(i), visited)
		}
		return arr
	}

	m := make(map[string]any, count)
	t.ForEach(func(k, v lua.LValue) {
		m[k.String()] = toGoVisited(v, visited)
	})
	return m
}

// registerValueType installs the metatable giving Lua field access to
// wrapped Go values.
func registerValueType(L *lua.LState) {
	mt := L.NewTypeMetatable(valueTypeName)
	L.SetField(mt, "__index", L.NewFunction(valueIndex))
	L.SetField(mt, "__newindex", L.NewFunction(valueNewIndex))
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		ud := L.CheckUserData(1)
		L.Push(lua.LString(fmt.Sprint(ud.Value)))
		return 1
	}))
	L.SetField(mt, "__len", L.NewFunction(func(L *lua.LState) int {
		rv := indirect(reflect.ValueOf(L.CheckUserData(1).Value))
		switch rv.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
			L.Push(lua.LNumber(rv.Len()))
		default:
			L.Push(lua.LNumber(0))
		}
		return 1
	}))
}

func indirect(rv reflect.Value) reflect.Value {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}

func valueIndex(L *lua.LState) int {
	rv := indirect(reflect.ValueOf(L.CheckUserData(1).Value))
	key := L.Get(2)

	var field reflect.Value
	switch rv.Kind() {
	case reflect.Struct:
		name, ok := key.(lua.LString)
		if !ok {
			break
		}
		if sf, ok := rv.Type().FieldByName(string(name)); ok && sf.IsExported() {
			field = rv.FieldByIndex(sf.Index)
		}
	case reflect.Slice, reflect.Array:
		if i, ok := key.(lua.LNumber); ok && int(i) >= 1 && int(i) <= rv.Len() {
			field = rv.Index(int(i) - 1)
		}
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			field = rv.MapIndex(reflect.ValueOf(key.String()).Convert(rv.Type().Key()))
		}
	}

	if !field.IsValid() || !field.CanInterface() {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(toLua(L, field.Interface()))
	return 1
}

func valueNewIndex(L *lua.LState) int {
	target := reflect.ValueOf(L.CheckUserData(1).Value)
	rv := indirect(target)
	key := L.Get(2)
	value := toGo(L.Get(3))

	switch rv.Kind() {
	case reflect.Struct:
		sf, ok := rv.Type().FieldByName(key.String())
		if !ok || !sf.IsExported() {
			L.RaiseError("no field %s on %s", key.String(), rv.Type())
			return 0
		}
		field := rv.FieldByIndex(sf.Index)
		if !field.CanSet() {
			L.RaiseError("field %s of %s is read-only", key.String(), rv.Type())
			return 0
		}
		v, err := assignable(value, field.Type())
		if err != nil {
			L.RaiseError("%s.%s: %v", rv.Type(), key.String(), err)
			return 0
		}
		field.Set(v)
	case reflect.Map:
		if rv.IsNil() || rv.Type().Key().Kind() != reflect.String {
			L.RaiseError("cannot assign into %s", rv.Type())
			return 0
		}
		v, err := assignable(value, rv.Type().Elem())
		if err != nil {
			L.RaiseError("%s[%s]: %v", rv.Type(), key.String(), err)
			return 0
		}
		rv.SetMapIndex(reflect.ValueOf(key.String()).Convert(rv.Type().Key()), v)
	default:
		L.RaiseError("cannot assign into %T", L.CheckUserData(1).Value)
	}
	return 0
}

func assignable(value any, typ reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(typ), nil
	}
	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(typ) {
		return v, nil
	}
	if v.Type().ConvertibleTo(typ) && v.Kind() != reflect.String && typ.Kind() != reflect.String {
		return v.Convert(typ), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", value, typ)
}
