package interval

import (
	"reflect"
	"testing"
)

func TestFuse_AdjacentPairs(t *testing.T) {
	in := []TimeInterval{{0, 100}, {100, 200}, {300, 400}}
	got := Fuse(in)
	want := []TimeInterval{{0, 200}, {300, 400}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Fuse(%v) = %v, want %v", in, got, want)
	}
}

func TestFuse_Idempotent(t *testing.T) {
	in := []TimeInterval{{0, 100}, {100, 200}, {300, 400}}
	once := Fuse(in)
	twice := Fuse(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Fuse is not idempotent: once=%v twice=%v", once, twice)
	}
}

func TestTrim_DropsOutside(t *testing.T) {
	in := []TimeInterval{{-50, -10}, {50, 150}, {1000, 2000}}
	bound := TimeInterval{0, 500}
	got := Trim(in, bound)
	want := []TimeInterval{{50, 150}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Trim(%v,%v) = %v, want %v", in, bound, got, want)
	}
}

func TestTrim_Idempotent(t *testing.T) {
	in := []TimeInterval{{-50, 600}, {700, 800}}
	bound := TimeInterval{0, 500}
	once := Trim(in, bound)
	twice := Trim(once, bound)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Trim is not idempotent: once=%v twice=%v", once, twice)
	}
}

func TestIntersectPair(t *testing.T) {
	iv, ok := IntersectPair(TimeInterval{0, 100}, TimeInterval{50, 150})
	if !ok || iv != (TimeInterval{50, 100}) {
		t.Errorf("IntersectPair = %v,%v want (50,100),true", iv, ok)
	}
	if _, ok := IntersectPair(TimeInterval{0, 10}, TimeInterval{20, 30}); ok {
		t.Errorf("expected no overlap")
	}
}

func TestCommon_NWay(t *testing.T) {
	lists := [][]TimeInterval{
		{{0, 100}, {200, 300}},
		{{50, 250}},
		{{60, 90}, {210, 400}},
	}
	got := Common(lists)
	want := []TimeInterval{{60, 90}, {210, 250}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Common(%v) = %v, want %v", lists, got, want)
	}
}
