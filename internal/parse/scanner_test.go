package parse

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/cppuml/internal/graph"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// readFixture reads a C++ fixture relative to the fixture project root.
// Tests run from internal/parse/, so the path is ../../testdata/...
func readFixture(t *testing.T, rel string) Unit {
	t.Helper()
	data, err := os.ReadFile("../../testdata/fixtures/cpp_project/" + rel)
	require.NoError(t, err, "reading fixture %s", rel)
	return Unit{Path: rel, Source: data}
}

func scanSource(t *testing.T, src string) *Result {
	t.Helper()
	res, err := NewScanner().Extract(context.Background(), Unit{Path: "test.hpp", Source: []byte(src)})
	require.NoError(t, err)
	return res
}

// findEntity returns the entity with the given name, or nil.
func findEntity(entities []graph.ClassEntity, name string) *graph.ClassEntity {
	for i := range entities {
		if entities[i].Name == name {
			return &entities[i]
		}
	}
	return nil
}

func findMethod(e *graph.ClassEntity, name string) *graph.Method {
	for i := range e.Methods {
		if e.Methods[i].Name == name {
			return &e.Methods[i]
		}
	}
	return nil
}

func fieldTypes(e *graph.ClassEntity) map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Name] = f.Type
	}
	return out
}

func pub(name, ret string) graph.Method {
	return graph.Method{Name: name, ReturnType: ret, Visibility: graph.VisibilityPublic}
}

// animalExpected is the model of testdata/fixtures/cpp_project/Animal.hpp.
func animalExpected() []graph.ClassEntity {
	ctor := func(name string) graph.Method {
		return graph.Method{Name: name, Visibility: graph.VisibilityPublic, IsConstructor: true}
	}
	speak := pub("speak", "void")
	pureSpeak := pub("speak", "void")
	pureSpeak.IsVirtual, pureSpeak.IsPureVirtual = true, true
	setName := pub("setName", "void")
	setName.Params = []graph.Param{{Type: "const std::string&", Name: "name"}}
	getName := pub("getName", "std::string")
	getName.IsConst = true
	addAnimal := pub("addAnimal", "void")
	addAnimal.Params = []graph.Param{{Type: "Animal*", Name: "animal"}}

	private := func(name, typ string) graph.Member {
		return graph.Member{Name: name, Type: typ, Visibility: graph.VisibilityPrivate}
	}

	return []graph.ClassEntity{
		{
			Name: "Animal", Kind: graph.EntityKindClass, File: "Animal.hpp", Line: 5,
			Fields: []graph.Member{
				{Name: "name", Type: "std::string", Visibility: graph.VisibilityProtected},
				{Name: "age", Type: "int", Visibility: graph.VisibilityProtected},
			},
			Methods: []graph.Method{
				ctor("Animal"),
				{Name: "~Animal", Visibility: graph.VisibilityPublic, IsVirtual: true, IsDestructor: true},
				pureSpeak, setName, getName,
			},
		},
		{
			Name: "Dog", Kind: graph.EntityKindClass, File: "Animal.hpp", Line: 19,
			Bases:   []string{"Animal"},
			Fields:  []graph.Member{private("breed", "std::string"), private("trained", "bool")},
			Methods: []graph.Method{ctor("Dog"), speak, pub("fetch", "void")},
		},
		{
			Name: "Cat", Kind: graph.EntityKindClass, File: "Animal.hpp", Line: 30,
			Bases:   []string{"Animal"},
			Fields:  []graph.Member{private("lives", "int")},
			Methods: []graph.Method{ctor("Cat"), speak, pub("scratch", "void")},
		},
		{
			Name: "Zoo", Kind: graph.EntityKindClass, File: "Animal.hpp", Line: 40,
			Fields:  []graph.Member{private("animals", "std::vector<Animal*>"), private("zooName", "std::string")},
			Methods: []graph.Method{addAnimal, pub("showAll", "void")},
		},
	}
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func TestScanner_AnimalFixture(t *testing.T) {
	res, err := NewScanner().Extract(context.Background(), readFixture(t, "Animal.hpp"))
	require.NoError(t, err)

	assert.Empty(t, res.Diagnostics)
	assert.Equal(t, animalExpected(), res.Entities)
}

func TestScanner_VehicleFixture(t *testing.T) {
	res, err := NewScanner().Extract(context.Background(), readFixture(t, "src/vehicle.hpp"))
	require.NoError(t, err)
	assert.Empty(t, res.Diagnostics)

	names := make([]string, 0, len(res.Entities))
	for _, e := range res.Entities {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"Wheel", "Engine", "Vehicle", "Car", "Garage"}, names)

	wheel := findEntity(res.Entities, "Wheel")
	require.NotNil(t, wheel)
	assert.Equal(t, graph.EntityKindStruct, wheel.Kind)
	assert.Equal(t, map[string]string{"radius": "double", "pressure": "int"}, fieldTypes(wheel))
	assert.Equal(t, graph.VisibilityPublic, wheel.Fields[0].Visibility)

	engine := findEntity(res.Entities, "Engine")
	require.NotNil(t, engine)
	require.Len(t, engine.Methods, 2)
	assert.True(t, engine.Methods[0].IsConstructor)
	assert.Equal(t, []graph.Param{{Type: "int", Name: "power"}}, engine.Methods[0].Params)
	assert.Equal(t, "power", engine.Methods[1].Name)
	assert.True(t, engine.Methods[1].IsConst)
	assert.Equal(t, graph.VisibilityPrivate, engine.Fields[0].Visibility)

	vehicle := findEntity(res.Entities, "Vehicle")
	require.NotNil(t, vehicle)
	assert.Equal(t, map[string]string{
		"id_":     "std::string",
		"engine_": "Engine",
		"wheels_": "std::vector<Wheel>",
		"driver_": "Driver*",
	}, fieldTypes(vehicle))
	ctor := findMethod(vehicle, "Vehicle")
	require.NotNil(t, ctor)
	assert.True(t, ctor.IsConstructor)
	assert.Equal(t, []graph.Param{
		{Type: "const std::string&", Name: "id"},
		{Type: "int", Name: "power"},
	}, ctor.Params)
	dtor := findMethod(vehicle, "~Vehicle")
	require.NotNil(t, dtor)
	assert.True(t, dtor.IsDestructor)
	assert.False(t, dtor.IsPureVirtual)
	speed := findMethod(vehicle, "speed")
	require.NotNil(t, speed)
	assert.True(t, speed.IsPureVirtual)
	assert.True(t, speed.IsConst)
	assert.Equal(t, "double", speed.ReturnType)
	eq := findMethod(vehicle, "operator==")
	require.NotNil(t, eq)
	assert.Equal(t, "bool", eq.ReturnType)
	assert.Equal(t, "Engine*", findMethod(vehicle, "engine").ReturnType)

	car := findEntity(res.Entities, "Car")
	require.NotNil(t, car)
	assert.Equal(t, []string{"Vehicle"}, car.Bases)
	assert.Equal(t, map[string]string{
		"spare_": "std::shared_ptr<Engine>",
		"seats_": "int",
		"doors_": "int*",
		"dirty":  "unsigned",
	}, fieldTypes(car))
	mk := findMethod(car, "make")
	require.NotNil(t, mk)
	assert.True(t, mk.IsStatic)
	assert.Equal(t, "Car*", mk.ReturnType)
	assert.Equal(t, []graph.Param{
		{Type: "const std::string&", Name: "id"},
		{Type: "int", Name: "seats"},
	}, mk.Params)

	garage := findEntity(res.Entities, "Garage")
	require.NotNil(t, garage)
	assert.Equal(t, map[string]string{"slots_": "std::map<std::string, Vehicle*>"}, fieldTypes(garage))
}

func TestScanner_SourceFileIgnoresStringsAndFunctions(t *testing.T) {
	res, err := NewScanner().Extract(context.Background(), readFixture(t, "src/vehicle.cpp"))
	require.NoError(t, err)

	require.Len(t, res.Entities, 1)
	odo := res.Entities[0]
	assert.Equal(t, "Odometer", odo.Name)
	assert.Equal(t, 6, odo.Line)
	assert.Equal(t, map[string]string{"km": "long"}, fieldTypes(&odo))
	require.Len(t, odo.Methods, 1)
	assert.Equal(t, "reset", odo.Methods[0].Name)
}

func TestScanner_QtWidget(t *testing.T) {
	res, err := NewScanner().Extract(context.Background(), readFixture(t, "qt/widget.h"))
	require.NoError(t, err)

	require.Len(t, res.Entities, 1)
	w := res.Entities[0]
	assert.Equal(t, "StatusWidget", w.Name)
	assert.Equal(t, []string{"QWidget"}, w.Bases)

	var names []string
	for _, m := range w.Methods {
		names = append(names, m.Name)
		assert.Equal(t, graph.VisibilityPublic, m.Visibility, m.Name)
	}
	assert.Equal(t, []string{"StatusWidget", "text", "setText", "changed"}, names)
	assert.Equal(t, []graph.Param{{Type: "QWidget*", Name: "parent"}}, w.Methods[0].Params)
	assert.Equal(t, []graph.Member{
		{Name: "labels_", Type: "QList<Label*>", Visibility: graph.VisibilityPrivate},
	}, w.Fields)

	require.Len(t, res.Diagnostics, 2)
	assert.Contains(t, res.Diagnostics[0].Message, "Q_OBJECT")
	assert.Contains(t, res.Diagnostics[1].Message, "member template")
	assert.Equal(t, "qt/widget.h", res.Diagnostics[0].Path)
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func TestScanner_DefaultVisibility(t *testing.T) {
	res := scanSource(t, "struct S { int a; };\nclass C { int b; };")
	require.Len(t, res.Entities, 2)
	assert.Equal(t, graph.VisibilityPublic, res.Entities[0].Fields[0].Visibility)
	assert.Equal(t, graph.VisibilityPrivate, res.Entities[1].Fields[0].Visibility)
}

func TestScanner_NestedTypes(t *testing.T) {
	res := scanSource(t, `
class Outer {
public:
    struct Inner {
        int x;
    } inner, *spare;
    enum class Mode : int { A, B } mode;
    class Forward;
    struct Node* head;
    int after;
};`)

	require.Len(t, res.Entities, 2)
	outer := findEntity(res.Entities, "Outer")
	inner := findEntity(res.Entities, "Inner")
	require.NotNil(t, outer)
	require.NotNil(t, inner)
	assert.Equal(t, map[string]string{"x": "int"}, fieldTypes(inner))
	assert.Equal(t, []graph.Member{
		{Name: "inner", Type: "Inner", Visibility: graph.VisibilityPublic},
		{Name: "spare", Type: "Inner*", Visibility: graph.VisibilityPublic},
		{Name: "mode", Type: "Mode", Visibility: graph.VisibilityPublic},
		{Name: "head", Type: "Node*", Visibility: graph.VisibilityPublic},
		{Name: "after", Type: "int", Visibility: graph.VisibilityPublic},
	}, outer.Fields)
	assert.Empty(t, res.Diagnostics)
}

func TestScanner_AnonymousNestedMembersReported(t *testing.T) {
	res := scanSource(t, `
class Outer {
    class Inner { int x; };
    Inner in;
    struct { int a; } anon;
};`)

	outer := findEntity(res.Entities, "Outer")
	require.NotNil(t, outer)
	assert.Equal(t, map[string]string{"in": "Inner"}, fieldTypes(outer))
	require.Len(t, res.Diagnostics, 1)
	assert.Contains(t, res.Diagnostics[0].Message, "anonymous struct member anon in Outer")
}

func TestScanner_SkipsEnumClassAndForwardDeclarations(t *testing.T) {
	res := scanSource(t, `
enum class Color : unsigned char { Red, Green };
class Later;
friend class Nope;
struct Point p = {1, 2};
class Real { Color c; };`)

	require.Len(t, res.Entities, 1)
	assert.Equal(t, "Real", res.Entities[0].Name)
}

func TestScanner_CommentsAndPreprocessor(t *testing.T) {
	res := scanSource(t, `
// class Commented { int x; };
/* struct Block {
   int y; }; */
#define DECLARE(name) \
    class name { int z; };
class Kept {
#if FEATURE
    int feature;
#endif
    char c = '}';
    const char* s = "};";
};`)

	require.Len(t, res.Entities, 1)
	kept := res.Entities[0]
	assert.Equal(t, "Kept", kept.Name)
	assert.Equal(t, 7, kept.Line)
	assert.Equal(t, map[string]string{"feature": "int", "c": "char", "s": "const char*"}, fieldTypes(&kept))
}

func TestScanner_MethodShapes(t *testing.T) {
	res := scanSource(t, `
class Shapes {
public:
    Shapes() = default;
    Shapes(const Shapes&) = delete;
    explicit operator bool() const;
    int operator()(int x) const;
    Shapes& operator=(const Shapes& other);
    auto area() const -> double;
    [[nodiscard]] static int count() noexcept;
    virtual void draw(int, unsigned long, const char* label = "x") const = 0;
    void visit(std::function<void(int)> fn);
};`)

	require.Len(t, res.Entities, 1)
	e := &res.Entities[0]
	assert.Empty(t, res.Diagnostics)

	var names []string
	for _, m := range e.Methods {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{
		"Shapes", "Shapes", "operator bool", "operator()", "operator=",
		"area", "count", "draw", "visit",
	}, names)

	assert.Equal(t, []graph.Param{{Type: "const Shapes&"}}, e.Methods[1].Params)
	assert.True(t, e.Methods[2].IsConst)
	assert.Equal(t, []graph.Param{{Type: "int", Name: "x"}}, e.Methods[3].Params)
	assert.Equal(t, "Shapes&", e.Methods[4].ReturnType)
	assert.Equal(t, "double", findMethod(e, "area").ReturnType)
	count := findMethod(e, "count")
	assert.True(t, count.IsStatic)
	assert.Equal(t, "int", count.ReturnType)

	draw := findMethod(e, "draw")
	assert.True(t, draw.IsPureVirtual)
	assert.True(t, draw.IsVirtual)
	assert.Equal(t, []graph.Param{
		{Type: "int"},
		{Type: "unsigned long"},
		{Type: "const char*", Name: "label"},
	}, draw.Params)
	assert.Equal(t, []graph.Param{{Type: "std::function<void(int)>", Name: "fn"}}, findMethod(e, "visit").Params)
}

func TestScanner_MemberShapes(t *testing.T) {
	res := scanSource(t, `
class Members {
    static const int kMax = 10;
    mutable std::mutex mu_;
    int grid[3][3];
    std::vector< Cell * > cells;
    std::function<void()> onDone = [this]() { done(); };
    unsigned flags : 4, mode : 2;
    std::map<int, std::vector<int>> index{};
};`)

	require.Len(t, res.Entities, 1)
	assert.Empty(t, res.Diagnostics)
	assert.Equal(t, []graph.Member{
		{Name: "kMax", Type: "const int", Visibility: graph.VisibilityPrivate},
		{Name: "mu_", Type: "std::mutex", Visibility: graph.VisibilityPrivate},
		{Name: "grid", Type: "int[3][3]", Visibility: graph.VisibilityPrivate},
		{Name: "cells", Type: "std::vector<Cell*>", Visibility: graph.VisibilityPrivate},
		{Name: "onDone", Type: "std::function<void()>", Visibility: graph.VisibilityPrivate},
		{Name: "flags", Type: "unsigned", Visibility: graph.VisibilityPrivate},
		{Name: "mode", Type: "unsigned", Visibility: graph.VisibilityPrivate},
		{Name: "index", Type: "std::map<int, std::vector<int>>", Visibility: graph.VisibilityPrivate},
	}, res.Entities[0].Fields)
}

func TestScanner_ConstructorInitializerBraces(t *testing.T) {
	res := scanSource(t, `
class Init {
public:
    Init(int a) : a_{a}, b_(a) { setup(); }
    void setup() {}
private:
    int a_;
    int b_;
};`)

	require.Len(t, res.Entities, 1)
	e := res.Entities[0]
	require.Len(t, e.Methods, 2)
	assert.True(t, e.Methods[0].IsConstructor)
	assert.Equal(t, "setup", e.Methods[1].Name)
	assert.Equal(t, map[string]string{"a_": "int", "b_": "int"}, fieldTypes(&e))
}

func TestScanner_DiagnosticsForUnrecognizedShapes(t *testing.T) {
	res := scanSource(t, `
class Odd {
    DECLARE_THING(Odd)
    int ok;
    int (*callback)(int);
    template <typename T> void put(T value);
};`)

	require.Len(t, res.Entities, 1)
	assert.Equal(t, map[string]string{"ok": "int"}, fieldTypes(&res.Entities[0]))
	require.Len(t, res.Diagnostics, 3)
	assert.Contains(t, res.Diagnostics[0].Message, "DECLARE_THING")
	assert.Equal(t, 3, res.Diagnostics[0].Line)
	assert.Contains(t, res.Diagnostics[1].Message, "unrecognized")
	assert.Equal(t, 5, res.Diagnostics[1].Line)
	assert.Contains(t, res.Diagnostics[2].Message, "template")
}

func TestScanner_UnterminatedBody(t *testing.T) {
	res := scanSource(t, "class Good { int a; };\nclass Broken {\n  int b;\n")

	require.Len(t, res.Entities, 1)
	assert.Equal(t, "Good", res.Entities[0].Name)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, 2, res.Diagnostics[0].Line)
	assert.True(t, strings.Contains(res.Diagnostics[0].Message, "unterminated"))
	assert.Equal(t, "test.hpp:2: "+res.Diagnostics[0].Message, res.Diagnostics[0].String())
}

func TestScanner_BaseList(t *testing.T) {
	res := scanSource(t, "class D : public virtual ns::Base<int, Alloc>, protected Mixin, Plain {};")
	require.Len(t, res.Entities, 1)
	assert.Equal(t, []string{"ns::Base<int, Alloc>", "Mixin", "Plain"}, res.Entities[0].Bases)
}

func TestScanner_ExportMacroAndFinal(t *testing.T) {
	res := scanSource(t, "class API_EXPORT Service final : public Base { };")
	require.Len(t, res.Entities, 1)
	assert.Equal(t, "Service", res.Entities[0].Name)
	assert.Equal(t, []string{"Base"}, res.Entities[0].Bases)
}

func TestScanner_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewScanner().Extract(ctx, Unit{Path: "x.hpp", Source: []byte("class A {};")})
	assert.ErrorIs(t, err, context.Canceled)
}
