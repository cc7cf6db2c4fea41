package differ

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	xsderrors "github.com/zxc8027/cnp-xml-fields-generator/errors"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/model"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/normalize"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/occurs"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/parser"
)

func mustOrder(t *testing.T, versions ...string) Order {
	t.Helper()
	o, err := NewOrder(versions)
	require.NoError(t, err)
	return o
}

func nv(name, start, end string, kind Role) NameVersion {
	return NameVersion{Name: name, Start: start, End: end, Kind: kind}
}

func TestAddNameIdempotent(t *testing.T) {
	var item VersionedItem
	item.AddName("orderId", "1.0", RoleElement)
	item.AddName("orderId", "1.0", RoleElement)
	assert.Len(t, item.Names, 1)

	item.AddName("orderId", "1.0", RoleAttribute)
	item.AddName("OrderId", "1.0", RoleElement)
	assert.Len(t, item.Names, 3)
}

func TestMergeTwoSpellings(t *testing.T) {
	var item VersionedItem
	for _, v := range []string{"1.0", "1.1", "1.2"} {
		item.AddName("A", v, RoleNone)
	}
	for _, v := range []string{"1.3", "1.4"} {
		item.AddName("B", v, RoleNone)
	}
	require.NoError(t, item.Merge(mustOrder(t, "1.0", "1.1", "1.2", "1.3", "1.4")))
	assert.Equal(t, []NameVersion{nv("A", "1.0", "1.2", RoleNone), nv("B", "1.3", "1.4", RoleNone)}, item.Names)
}

func TestMergeGapsForceBreaks(t *testing.T) {
	order := mustOrder(t, "8.0", "8.1", "8.2", "8.3", "8.4", "8.5", "9.0", "9.1", "9.2", "9.3", "9.4", "9.5", "9.6", "9.7", "9.8")
	var item VersionedItem
	for _, v := range []string{"8.4", "8.5", "9.0", "9.1", "9.3", "9.4", "9.5", "9.6"} {
		item.AddName("X", v, RoleNone)
	}
	item.AddName("Y", "9.7", RoleNone)
	item.AddName("X", "9.8", RoleNone)

	require.NoError(t, item.Merge(order))
	assert.Equal(t, []NameVersion{
		nv("X", "8.4", "9.1", RoleNone),
		nv("X", "9.3", "9.6", RoleNone),
		nv("Y", "9.7", "9.7", RoleNone),
		nv("X", "9.8", "9.8", RoleNone),
	}, item.Names)
}

func TestMergeSortsAndIsIdempotent(t *testing.T) {
	order := mustOrder(t, "1.0", "1.1", "1.2", "1.3")
	item := VersionedItem{Names: []NameVersion{
		nv("A", "1.2", "1.2", RoleNone),
		nv("A", "1.0", "1.0", RoleNone),
		nv("A", "1.1", "1.1", RoleNone),
		nv("A", "1.0", "1.3", RoleNone),
	}}
	require.NoError(t, item.Merge(order))
	assert.Equal(t, []NameVersion{nv("A", "1.0", "1.3", RoleNone)}, item.Names)
	require.NoError(t, item.Merge(order))
	assert.Equal(t, []NameVersion{nv("A", "1.0", "1.3", RoleNone)}, item.Names)
}

func TestMergeInterleavedSpellings(t *testing.T) {
	var item VersionedItem
	for _, v := range []string{"1.0", "1.1", "1.2"} {
		item.AddName("litleRequest", v, RoleNone)
		item.AddName("cnpRequest", v, RoleNone)
	}
	order := mustOrder(t, "1.0", "1.1", "1.2")
	require.NoError(t, item.Merge(order))
	assert.Equal(t, []NameVersion{
		nv("litleRequest", "1.0", "1.2", RoleNone),
		nv("cnpRequest", "1.0", "1.2", RoleNone),
	}, item.Names)
	require.NoError(t, item.checkInvariants(order))
}

func TestMergeRoleChangeBreaks(t *testing.T) {
	var item VersionedItem
	item.AddName("token", "1.0", RoleElement)
	item.AddName("token", "1.1", RoleAttribute)
	require.NoError(t, item.Merge(mustOrder(t, "1.0", "1.1")))
	assert.Len(t, item.Names, 2)
}

func TestMergeUnknownVersion(t *testing.T) {
	var item VersionedItem
	item.AddName("A", "2.0", RoleNone)
	err := item.Merge(mustOrder(t, "1.0"))
	require.ErrorIs(t, err, xsderrors.ErrUnknownVersion)
}

func TestCompositeMerge(t *testing.T) {
	c := newComposite("type")
	for _, v := range []string{"1.0", "1.1", "1.2"} {
		c.AddName("TestName1", v, RoleNone)
	}
	for _, v := range []string{"1.3", "1.4"} {
		c.AddName("TestName2", v, RoleNone)
	}
	key1 := ChildKey{Name: "TestElement1", Role: RoleElement}
	c.child(key1).AddName("TestElement1", "1.0", RoleElement)
	c.child(key1).AddName("TestElement1A", "1.1", RoleElement)
	c.child(key1).AddName("TestElement1", "1.2", RoleElement)
	c.child(key1).AddName("TestElement1", "1.3", RoleElement)
	key2 := ChildKey{Name: "TestElement2", Role: RoleElement}
	for _, v := range []string{"1.1", "1.2", "1.3", "1.4"} {
		c.child(key2).AddName("TestElement2", v, RoleElement)
	}
	key3 := ChildKey{Name: "TestElement3", Role: RoleElement}
	for _, v := range []string{"1.1", "1.2", "1.4"} {
		c.child(key3).AddName("TestElement3", v, RoleElement)
	}

	order := mustOrder(t, "1.0", "1.1", "1.2", "1.3", "1.4")
	require.NoError(t, c.Merge(order))
	require.NoError(t, c.checkInvariants(order))

	assert.Equal(t, []NameVersion{nv("TestName1", "1.0", "1.2", RoleNone), nv("TestName2", "1.3", "1.4", RoleNone)}, c.Names)

	child1, ok := c.Child(ChildKey{Name: "testelement1", Role: RoleElement})
	require.True(t, ok)
	assert.Equal(t, []NameVersion{
		nv("TestElement1", "1.0", "1.0", RoleElement),
		nv("TestElement1A", "1.1", "1.1", RoleElement),
		nv("TestElement1", "1.2", "1.3", RoleElement),
	}, child1.Names)

	child2, _ := c.Child(key2)
	assert.Equal(t, []NameVersion{nv("TestElement2", "1.1", "1.4", RoleElement)}, child2.Names)

	child3, _ := c.Child(key3)
	assert.Equal(t, []NameVersion{
		nv("TestElement3", "1.1", "1.2", RoleElement),
		nv("TestElement3", "1.4", "1.4", RoleElement),
	}, child3.Names)
}

func TestChildKeyRoles(t *testing.T) {
	c := newComposite("card")
	c.child(ChildKey{Name: "type", Role: RoleElement}).AddName("type", "1.0", RoleElement)
	c.child(ChildKey{Name: "type", Role: RoleAttribute}).AddName("type", "1.1", RoleAttribute)
	c.child(ChildKey{Name: "Type", Role: RoleElement}).AddName("Type", "1.2", RoleElement)
	c.child(ChildKey{Name: "VI", Role: RoleEnumLiteral})
	c.child(ChildKey{Name: "vi", Role: RoleEnumLiteral})

	assert.Equal(t, 4, c.Children.Len())
	el, _ := c.Child(ChildKey{Name: "TYPE", Role: RoleElement})
	assert.Len(t, el.Names, 2)
	assert.Equal(t, "element:type", ChildKey{Name: "type", Role: RoleElement}.String())
}

func TestCheckInvariants(t *testing.T) {
	order := mustOrder(t, "1.0", "1.1", "1.2")
	tests := []struct {
		name  string
		names []NameVersion
		ok    bool
	}{
		{name: "merged", names: []NameVersion{nv("A", "1.0", "1.1", RoleNone), nv("B", "1.2", "1.2", RoleNone)}, ok: true},
		{name: "mergeable neighbours", names: []NameVersion{nv("A", "1.0", "1.0", RoleNone), nv("A", "1.1", "1.2", RoleNone)}},
		{name: "mergeable across another spelling", names: []NameVersion{
			nv("A", "1.0", "1.0", RoleNone),
			nv("B", "1.0", "1.2", RoleNone),
			nv("A", "1.1", "1.1", RoleNone),
		}},
		{name: "two spellings sharing releases", names: []NameVersion{
			nv("A", "1.0", "1.2", RoleNone),
			nv("B", "1.1", "1.2", RoleNone),
		}, ok: true},
		{name: "unsorted", names: []NameVersion{nv("A", "1.2", "1.2", RoleNone), nv("B", "1.0", "1.0", RoleNone)}},
		{name: "reversed", names: []NameVersion{nv("A", "1.2", "1.0", RoleNone)}},
		{name: "unknown", names: []NameVersion{nv("A", "0.9", "0.9", RoleNone)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := VersionedItem{Names: tt.names}
			err := item.checkInvariants(order)
			if tt.ok {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
		})
	}
}

func TestNewOrderDuplicate(t *testing.T) {
	_, err := NewOrder([]string{"1.0", "1.0"})
	require.ErrorIs(t, err, xsderrors.ErrDuplicateRelease)
}

func withBase(name, base string, children ...string) *model.ComplexType {
	ct := model.NewComplexType(name, base)
	for _, child := range children {
		ct.AddItem(model.NewChildElement(child, "string"))
	}
	return ct
}

func TestComplexTypeWithChildAndHoisting(t *testing.T) {
	v := New(NewRenameTable(nil))
	require.NoError(t, v.AddComplexType(withBase("A", "", "x"), "1.0"))
	require.NoError(t, v.AddComplexType(withBase("B", "A"), "1.0"))
	require.NoError(t, v.AddComplexType(withBase("C", "B", "x", "y"), "1.0"))
	require.NoError(t, v.AddComplexType(withBase("A", "", "x"), "1.1"))
	require.NoError(t, v.AddComplexType(withBase("B", "A"), "1.1"))
	require.NoError(t, v.AddComplexType(withBase("C", "B", "X", "y"), "1.1"))

	x := ChildKey{Name: "x", Role: RoleElement}
	owner, ok, err := v.ComplexTypeWithChild("C", x)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "C", owner, "C itself declares x before hoisting")

	owner, ok, err = v.ComplexTypeWithChild("B", x)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "A", owner)

	owner, ok, err = v.ComplexTypeWithChild("C", ChildKey{Name: "y", Role: RoleElement})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "C", owner)

	_, ok, err = v.ComplexTypeWithChild("C", ChildKey{Name: "z", Role: RoleElement})
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = v.ComplexTypeWithChild("C", ChildKey{Name: "x", Role: RoleAttribute})
	require.NoError(t, err)
	assert.False(t, ok, "roles are distinct")

	require.NoError(t, v.Merge([]string{"1.0", "1.1"}))

	a, _ := v.ComplexTypes.Get("A")
	c, _ := v.ComplexTypes.Get("C")
	assert.False(t, c.Children.Has(x))
	assert.True(t, c.Children.Has(ChildKey{Name: "y", Role: RoleElement}))

	ax, ok := a.Child(x)
	require.True(t, ok)
	assert.Equal(t, []NameVersion{
		nv("x", "1.0", "1.1", RoleElement),
		nv("X", "1.1", "1.1", RoleElement),
	}, ax.Names)

	owner, ok, err = v.ComplexTypeWithChild("C", x)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "A", owner)
}

func TestHoistingCaseVariantKeepsMaximalRanges(t *testing.T) {
	v := New(NewRenameTable(nil))
	require.NoError(t, v.AddComplexType(withBase("A", "", "x"), "1.0"))
	require.NoError(t, v.AddComplexType(withBase("C", "A"), "1.0"))
	for _, release := range []string{"1.1", "1.2"} {
		require.NoError(t, v.AddComplexType(withBase("A", "", "x"), release))
		require.NoError(t, v.AddComplexType(withBase("C", "A", "X"), release))
	}
	require.NoError(t, v.Merge([]string{"1.0", "1.1", "1.2"}))
	require.NoError(t, v.CheckInvariants([]string{"1.0", "1.1", "1.2"}))

	a, _ := v.ComplexTypes.Get("A")
	ax, ok := a.Child(ChildKey{Name: "x", Role: RoleElement})
	require.True(t, ok)
	assert.Equal(t, []NameVersion{
		nv("x", "1.0", "1.2", RoleElement),
		nv("X", "1.1", "1.2", RoleElement),
	}, ax.Names)
}

func TestHoistingIsOrderIndependent(t *testing.T) {
	v := New(NewRenameTable(nil))
	require.NoError(t, v.AddComplexType(withBase("C", "B", "x"), "1.0"))
	require.NoError(t, v.AddComplexType(withBase("B", "A", "x"), "1.0"))
	require.NoError(t, v.AddComplexType(withBase("A", "", "x"), "1.0"))
	require.NoError(t, v.Merge([]string{"1.0"}))

	for _, name := range []string{"B", "C"} {
		ct, _ := v.ComplexTypes.Get(name)
		assert.Zero(t, ct.Children.Len(), name)
	}
	a, _ := v.ComplexTypes.Get("A")
	ax, _ := a.Child(ChildKey{Name: "x", Role: RoleElement})
	assert.Equal(t, []NameVersion{nv("x", "1.0", "1.0", RoleElement)}, ax.Names)
}

func TestHoistingCycleFails(t *testing.T) {
	v := New(NewRenameTable(nil))
	require.NoError(t, v.AddComplexType(withBase("P", "Q", "x"), "1.0"))
	require.NoError(t, v.AddComplexType(withBase("Q", "P"), "1.0"))

	_, _, err := v.ComplexTypeWithChild("Q", ChildKey{Name: "y", Role: RoleElement})
	require.ErrorIs(t, err, xsderrors.ErrTypeCycle)
	_, _, err = v.ComplexTypeWithChild("P", ChildKey{Name: "x", Role: RoleElement})
	require.ErrorIs(t, err, xsderrors.ErrTypeCycle, "owner before the loop still fails")
	require.ErrorIs(t, v.Merge([]string{"1.0"}), xsderrors.ErrTypeCycle)
}

func TestAddSimpleTypeRouting(t *testing.T) {
	v := New(NewRenameTable(nil))
	enum := model.NewSimpleType("currencyCodeEnum", "string")
	enum.AddEnumeration("USD")
	enum.AddEnumeration("AUD")
	v.AddSimpleType(enum, "1.0")
	enum2 := model.NewSimpleType("currencyCodeEnum", "string")
	enum2.AddEnumeration("USD")
	v.AddSimpleType(enum2, "1.1")

	plain := model.NewSimpleType("string25Type", "string")
	plain.AddRestriction("maxLength", "25")
	v.AddSimpleType(plain, "1.0")

	require.NoError(t, v.Merge([]string{"1.0", "1.1"}))
	assert.Equal(t, 1, v.Enums.Len())
	assert.Equal(t, 1, v.SimpleTypes.Len())

	e, _ := v.Enums.Get("CURRENCYCODEENUM")
	assert.Equal(t, "string", e.DeclaredType)
	usd, _ := e.Child(ChildKey{Name: "USD", Role: RoleEnumLiteral})
	assert.Equal(t, []NameVersion{nv("USD", "1.0", "1.1", RoleEnumLiteral)}, usd.Names)
	aud, _ := e.Child(ChildKey{Name: "AUD", Role: RoleEnumLiteral})
	assert.Equal(t, []NameVersion{nv("AUD", "1.0", "1.0", RoleEnumLiteral)}, aud.Names)
}

func TestMemberAttributesAreLastWriteWins(t *testing.T) {
	v := New(NewRenameTable(nil))
	first := model.NewComplexType("sale", "")
	el := model.NewChildElement("amount", "int")
	first.AddItem(el)
	first.AddItem(&model.Attribute{Name: "id", Type: "string", Required: true, Default: "0", HasDefault: true})
	require.NoError(t, v.AddComplexType(first, "1.0"))

	second := model.NewComplexType("sale", "")
	el2 := model.NewChildElement("amount", "long")
	el2.MinOccurs = 1
	el2.MaxOccurs = occurs.Unbounded
	second.AddItem(el2)
	second.AddItem(&model.Attribute{Name: "id", Type: "string"})
	require.NoError(t, v.AddComplexType(second, "1.1"))

	sale, _ := v.ComplexTypes.Get("sale")
	amount, _ := sale.Child(ChildKey{Name: "amount", Role: RoleElement})
	assert.Equal(t, "long", amount.DeclaredType)
	assert.Equal(t, 1, *amount.MinOccurs)
	assert.True(t, amount.MaxOccurs.IsUnbounded())
	id, _ := sale.Child(ChildKey{Name: "id", Role: RoleAttribute})
	assert.False(t, *id.Required)
	assert.Nil(t, id.DefaultValue)
}

func TestAbsorbRulesAndLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	v := New(NewRenameTable(DefaultRenames()), WithLogger(zap.New(core)))

	s := parser.NewSchema()
	_, err := s.AddType(model.NewComplexType("litleOnlineRequest", ""))
	require.NoError(t, err)
	require.NoError(t, s.AddElement(model.NewComplexType("litleOnlineRequest", "")))

	require.NoError(t, v.Absorb(s, "1.1"))
	require.ErrorIs(t, v.Absorb(s, "1.1"), xsderrors.ErrDuplicateRelease)
	require.NoError(t, v.Absorb(s, "1.0"))
	assert.Equal(t, []string{"1.1", "1.0"}, v.absorbed)

	require.ErrorIs(t, v.Merge([]string{"1.0", "1.1"}), xsderrors.ErrStageOrder)
	assert.Equal(t, 2, logs.FilterMessage("canonicalized legacy name").Len())
	assert.True(t, v.Elements.Has("cnpOnlineRequest"))
}

func TestAbsorbAfterMerge(t *testing.T) {
	v := New(NewRenameTable(nil))
	require.NoError(t, v.Merge(nil))
	require.ErrorIs(t, v.Absorb(parser.NewSchema(), "1.0"), xsderrors.ErrStageOrder)
}

const legacyRelease = `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
	<xs:complexType name="legacyRequest">
		<xs:sequence><xs:element name="merchantId" type="xs:string"/></xs:sequence>
		<xs:attribute name="version" type="xs:string"/>
	</xs:complexType>
	<xs:element name="legacyRequest" type="legacyRequest"/>
</xs:schema>`

const currentRelease = `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
	<xs:complexType name="currentRequest">
		<xs:sequence><xs:element name="merchantId" type="xs:string"/></xs:sequence>
		<xs:attribute name="version" type="xs:string"/>
	</xs:complexType>
	<xs:element name="currentRequest" type="currentRequest"/>
</xs:schema>`

func TestEndToEndRename(t *testing.T) {
	v := New(NewRenameTable(map[string]string{"legacyRequest": "currentRequest"}))
	releases := []struct {
		version string
		doc     string
	}{
		{version: "1.0", doc: legacyRelease},
		{version: "1.1", doc: currentRelease},
		{version: "1.2", doc: currentRelease},
	}
	for _, r := range releases {
		s, err := parser.ParseBytes([]byte(r.doc))
		require.NoError(t, err)
		flat, err := normalize.Flatten(s)
		require.NoError(t, err)
		require.NoError(t, v.Absorb(normalize.Compress(flat), r.version))
	}
	versions := []string{"1.0", "1.1", "1.2"}
	require.NoError(t, v.Merge(versions))
	require.NoError(t, v.CheckInvariants(versions))

	require.Equal(t, 1, v.ComplexTypes.Len())
	req, ok := v.ComplexTypes.Get("currentRequest")
	require.True(t, ok)
	assert.Equal(t, "currentRequest", req.Canonical)
	assert.Equal(t, []NameVersion{
		nv("legacyRequest", "1.0", "1.0", RoleNone),
		nv("currentRequest", "1.1", "1.2", RoleNone),
	}, req.Names)

	merchant, _ := req.Child(ChildKey{Name: "merchantId", Role: RoleElement})
	assert.Equal(t, []NameVersion{nv("merchantId", "1.0", "1.2", RoleElement)}, merchant.Names)

	element, _ := v.Elements.Get("currentRequest")
	assert.Equal(t, "currentRequest", element.DeclaredType)
	assert.Len(t, element.Names, 2)

	snap := v.Export(versions)
	require.Len(t, snap.ComplexTypes, 1)
	assert.Equal(t, "currentRequest", snap.ComplexTypes[0].Name)
	require.Len(t, snap.ComplexTypes[0].Children, 2)
	assert.Equal(t, RoleElement, snap.ComplexTypes[0].Children[0].Role)
	assert.Equal(t, RoleAttribute, snap.ComplexTypes[0].Children[1].Role)
	assert.Equal(t, versions, snap.Versions)
	assert.NotNil(t, snap.Enums)
}

func TestRenameTable(t *testing.T) {
	table := NewRenameTable(DefaultRenames())
	assert.Equal(t, 5, table.Len())
	assert.Equal(t, "cnpRequest", table.Canonical("LITLEREQUEST"))
	assert.Equal(t, "saleType", table.Canonical("saleType"))
	assert.Equal(t, "x", RenameTable{}.Canonical("x"))
}

func TestRoleText(t *testing.T) {
	for _, r := range []Role{RoleNone, RoleElement, RoleAttribute, RoleEnumLiteral} {
		text, err := r.MarshalText()
		require.NoError(t, err)
		var back Role
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, r, back)
	}
	var r Role
	assert.Error(t, r.UnmarshalText([]byte("group")))
}

func TestBaseChain(t *testing.T) {
	v := New(NewRenameTable(DefaultRenames()))
	require.NoError(t, v.AddComplexType(withBase("cnpRequest", "baseRequest"), "1.0"))
	require.NoError(t, v.AddComplexType(withBase("baseRequest", "xs:anyType"), "1.0"))

	chain, err := v.BaseChain("litleRequest")
	require.NoError(t, err)
	assert.Equal(t, []string{"cnpRequest", "baseRequest"}, chain)

	chain, err = v.BaseChain("unknown")
	require.NoError(t, err)
	assert.Empty(t, chain)
}
