package chain

import (
	"errors"
	"fmt"
)

// Pallet and method names of the case-management pallet.
const (
	LocPallet = "case-management"

	MethodCreateLoc          = "create-case"
	MethodAddMetadata        = "add-metadata"
	MethodAddFile            = "add-file"
	MethodAddLink            = "add-link"
	MethodClose              = "close"
	MethodMakeVoid           = "void"
	MethodMakeVoidAndReplace = "void-and-replace"

	locIDArg = "loc_id"
)

// ErrUnsupportedCall is returned by DecodeLocCall for methods this service
// does not mirror.
var ErrUnsupportedCall = errors.New("unsupported call")

// LocCall is a decoded case-management call. The set of implementations is
// closed: CreateLoc, AddMetadata, AddFile, AddLink, CloseLoc and VoidLoc.
type LocCall interface {
	// LocID is the external identifier of the targeted case.
	LocID() string
	locCall()
}

type locRef struct {
	ID string
}

func (r locRef) LocID() string { return r.ID }
func (locRef) locCall()        {}

// CreateLoc confirms that a case exists on-chain.
type CreateLoc struct{ locRef }

// AddMetadata confirms a metadata item by name.
type AddMetadata struct {
	locRef
	Name string
}

// AddFile confirms a file by content hash.
type AddFile struct {
	locRef
	Hash string
}

// AddLink confirms a link by target case identifier.
type AddLink struct {
	locRef
	Target string
}

// CloseLoc closes a case.
type CloseLoc struct{ locRef }

// VoidLoc voids a case. Replaced is set for void-and-replace.
type VoidLoc struct {
	locRef
	Replaced bool
}

// DecodeLocCall turns a case-management extrinsic into its call variant.
// Extrinsics of other pallets or unknown methods yield ErrUnsupportedCall;
// malformed arguments yield an *ArgumentDecodeError.
func DecodeLocCall(e Extrinsic) (LocCall, error) {
	if e.Pallet != LocPallet {
		return nil, fmt.Errorf("%w: pallet %s", ErrUnsupportedCall, e.Pallet)
	}
	switch e.Method {
	case MethodCreateLoc, MethodAddMetadata, MethodAddFile, MethodAddLink,
		MethodClose, MethodMakeVoid, MethodMakeVoidAndReplace:
	default:
		return nil, fmt.Errorf("%w: method %s.%s", ErrUnsupportedCall, e.Pallet, e.Method)
	}

	id, err := e.Args.DecimalID(locIDArg)
	if err != nil {
		return nil, err
	}
	ref := locRef{ID: id}

	switch e.Method {
	case MethodCreateLoc:
		return CreateLoc{ref}, nil
	case MethodAddMetadata:
		name, err := e.Args.UTF8("item.name")
		if err != nil {
			return nil, err
		}
		return AddMetadata{locRef: ref, Name: name}, nil
	case MethodAddFile:
		hash, err := e.Args.Hex("file.hash")
		if err != nil {
			return nil, err
		}
		return AddFile{locRef: ref, Hash: hash}, nil
	case MethodAddLink:
		target, err := e.Args.NestedDecimalID("link.id")
		if err != nil {
			return nil, err
		}
		return AddLink{locRef: ref, Target: target}, nil
	case MethodClose:
		return CloseLoc{ref}, nil
	default:
		return VoidLoc{locRef: ref, Replaced: e.Method == MethodMakeVoidAndReplace}, nil
	}
}
