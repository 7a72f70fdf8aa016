package cart

import (
	"strings"
	"testing"

	"github.com/angelmondragon/storefront/internal/catalog"
)

func TestComputeCartItemKeyOrderIndependent(t *testing.T) {
	// maps iterate in random order, so build the same selection many ways
	pairs := [][2]string{{"Size", "40"}, {"Color", "Green"}, {"Capacity", "512G"}, {"With USB 3 ports", "Yes"}}
	want := ComputeCartItemKey("xbox", selectionOf(pairs...))

	for i := 0; i < len(pairs); i++ {
		rotated := append(append([][2]string{}, pairs[i:]...), pairs[:i]...)
		for round := 0; round < 10; round++ {
			if got := ComputeCartItemKey("xbox", selectionOf(rotated...)); got != want {
				t.Fatalf("permutation %d changed key: %q != %q", i, got, want)
			}
		}
	}
	if want != "xbox_Capacity:512G|Color:Green|Size:40|With USB 3 ports:Yes" {
		t.Fatalf("unexpected canonical key %q", want)
	}
}

func TestComputeCartItemKeyEmptySelection(t *testing.T) {
	empty := ComputeCartItemKey("p", nil)
	if empty != "p_" {
		t.Fatalf("unexpected empty key %q", empty)
	}
	if empty == ComputeCartItemKey("p", selectionOf([2]string{"Size", "40"})) {
		t.Fatal("empty selection must differ from a non-empty one")
	}
	if ComputeCartItemKey("p", catalog.SelectedAttributes{}) != empty {
		t.Fatal("nil and empty selections must share a key")
	}
}

func TestComputeCartItemKeyDistinct(t *testing.T) {
	inputs := []struct {
		product string
		pairs   [][2]string
	}{
		{product: "a"},
		{product: "b"},
		{product: "a", pairs: [][2]string{{"Size", "40"}}},
		{product: "a", pairs: [][2]string{{"Size", "41"}}},
		{product: "b", pairs: [][2]string{{"Size", "40"}}},
		{product: "a", pairs: [][2]string{{"Color", "40"}}},
		{product: "a", pairs: [][2]string{{"Size", "40"}, {"Color", "Blue"}}},
		{product: "a", pairs: [][2]string{{"Size", "40"}, {"Color", "Black"}}},
	}

	seen := make(map[string]int)
	for i, in := range inputs {
		key := ComputeCartItemKey(in.product, selectionOf(in.pairs...))
		if prev, dup := seen[key]; dup {
			t.Fatalf("inputs %d and %d collide on %q", prev, i, key)
		}
		seen[key] = i
		if !strings.HasPrefix(key, in.product+"_") {
			t.Fatalf("key %q must start with product id", key)
		}
	}
}

func TestComputeCartItemKeyCatalogIDs(t *testing.T) {
	inputs := []struct {
		product string
		pairs   [][2]string
	}{
		{product: "apple-imac-2021", pairs: [][2]string{{"Capacity", "256GB"}, {"With USB 3 ports", "Yes"}, {"Touch ID in keyboard", "No"}}},
		{product: "apple-imac-2021", pairs: [][2]string{{"Capacity", "512GB"}, {"With USB 3 ports", "Yes"}, {"Touch ID in keyboard", "No"}}},
		{product: "ps-5", pairs: [][2]string{{"Color", "#44FF03"}, {"Capacity", "512G"}}},
		{product: "ps-5", pairs: [][2]string{{"Color", "#03FFF7"}, {"Capacity", "512G"}}},
		{product: "huarache-x-stussy-le", pairs: [][2]string{{"Size", "40"}}},
		{product: "huarache-x-stussy-le", pairs: [][2]string{{"Size", "41"}}},
	}

	seen := make(map[string]int)
	for i, in := range inputs {
		for _, p := range in.pairs {
			for _, id := range []string{in.product, p[0], p[1]} {
				if strings.ContainsAny(id, keySeparator+selectionSeparator+pairSeparator) {
					t.Fatalf("catalog id %q contains a key separator", id)
				}
			}
		}
		key := ComputeCartItemKey(in.product, selectionOf(in.pairs...))
		if prev, dup := seen[key]; dup {
			t.Fatalf("inputs %d and %d collide on %q", prev, i, key)
		}
		seen[key] = i
	}
}

func selectionOf(pairs ...[2]string) catalog.SelectedAttributes {
	out := catalog.SelectedAttributes{}
	for _, p := range pairs {
		out[p[0]] = p[1]
	}
	return out
}
