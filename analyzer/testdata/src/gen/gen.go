// Code generated by hand for tests. DO NOT EDIT.

package gen

func generated() {
	a := 1
	a = a
	_ = a
}
