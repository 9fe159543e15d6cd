// Package bridge routes requests from the application layer to the icon
// cache, the file-open broadcaster and the platform collaborators, and
// serves them over a length-prefixed JSON stream.
package bridge

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"go.aimuz.me/foto/fileopen"
	"go.aimuz.me/foto/iconcache"
	"go.aimuz.me/foto/imageutil"
	"go.aimuz.me/foto/internal/types"
	"go.aimuz.me/foto/platform"
)

// Method names understood by Handle.
const (
	MethodPing                 = "ping"
	MethodGetInitialFile       = "getInitialFile"
	MethodSubscribe            = "subscribeFileOpenEvents"
	MethodUnsubscribe          = "unsubscribeFileOpenEvents"
	MethodGetPlatformIcon      = "getPlatformIcon"
	MethodMoveToTrash          = "moveToTrash"
	MethodBundlePath           = "bundlePathForIdentifier"
	MethodOpenFiles            = "openFilesWithBundleIdentifier"
	MethodGetCreationDate      = "getCreationDate"
	MethodGetModificationDate  = "getModificationDate"
	MethodGetImageCreationDate = "getImageCreationDate"
	MethodTransformImage       = "transformImage"
	MethodLosslessRotate       = "losslessRotate"
)

// Images transforms image files in place.
type Images interface {
	Transform(ctx context.Context, path string, t imageutil.Transform, quality float64) (bool, error)
	AutoRotate(ctx context.Context, path string) (bool, error)
}

// Dispatcher owns the process-wide state behind the bridge.
type Dispatcher struct {
	icons  *iconcache.Cache
	opens  *fileopen.Broadcaster
	plat   platform.Platform
	images Images
}

// NewDispatcher creates a Dispatcher from its collaborators.
func NewDispatcher(icons *iconcache.Cache, opens *fileopen.Broadcaster, plat platform.Platform, images Images) *Dispatcher {
	return &Dispatcher{
		icons:  icons,
		opens:  opens,
		plat:   plat,
		images: images,
	}
}

// Opens returns the broadcaster OS open events are recorded into.
func (d *Dispatcher) Opens() *fileopen.Broadcaster {
	return d.opens
}

// Close releases the icon key set.
func (d *Dispatcher) Close() error {
	return d.icons.Close()
}

// InitialFile returns the first file opened since process start.
func (d *Dispatcher) InitialFile() (string, bool) {
	return d.opens.InitialFile()
}

// Subscribe makes fn the only receiver of future file-open events and
// returns the new subscription ID. A previous subscription stops receiving.
func (d *Dispatcher) Subscribe(fn func(subscription, path string)) string {
	id := uuid.NewString()
	d.opens.Attach(func(path string) {
		fn(id, path)
	})
	slog.Debug("file open subscription attached", "subscription", id)
	return id
}

// Unsubscribe drops the current subscription, if any.
func (d *Dispatcher) Unsubscribe() {
	d.opens.Detach()
}

// PlatformIcon returns the icon for path, with the PNG only on first
// sighting of its key.
func (d *Dispatcher) PlatformIcon(path string) (types.PlatformIcon, error) {
	if path == "" {
		return types.PlatformIcon{}, malformed("%s: missing path", MethodGetPlatformIcon)
	}

	icon, err := d.plat.Icon(path)
	if err != nil {
		return types.PlatformIcon{}, err
	}
	defer icon.Release()

	src := iconcache.Source{Name: icon.Name()}
	if src.Name == "" {
		src.Raw = icon.Raw()
	}
	id := iconcache.Derive(src, path)
	if id.Kind == iconcache.IdentityPath {
		slog.Debug("icon has no name or bitmap, keyed by path", "path", path)
	}

	res, err := d.icons.LookupOrInsert(id.Key, icon.PNG)
	if err != nil {
		return types.PlatformIcon{}, err
	}
	return types.PlatformIcon{Key: res.Key, PNG: res.PNG}, nil
}

// MoveToTrash moves path to the trash.
func (d *Dispatcher) MoveToTrash(path string) (bool, error) {
	if path == "" {
		return false, malformed("%s: missing path", MethodMoveToTrash)
	}
	if err := d.plat.MoveToTrash(path); err != nil {
		return false, err
	}
	return true, nil
}

// CreationDate returns the creation time of path in epoch seconds.
func (d *Dispatcher) CreationDate(path string) (float64, error) {
	if path == "" {
		return 0, malformed("%s: missing path", MethodGetCreationDate)
	}
	t, err := d.plat.CreationDate(path)
	if err != nil {
		return 0, err
	}
	return platform.EpochSeconds(t), nil
}

// ModificationDate returns the modification time of path in epoch seconds.
func (d *Dispatcher) ModificationDate(path string) (float64, error) {
	if path == "" {
		return 0, malformed("%s: missing path", MethodGetModificationDate)
	}
	t, err := d.plat.ModificationDate(path)
	if err != nil {
		return 0, err
	}
	return platform.EpochSeconds(t), nil
}

// ImageCreationDate returns the EXIF capture time of path in epoch seconds,
// or the file creation time when the image carries none.
func (d *Dispatcher) ImageCreationDate(path string) (float64, error) {
	if path == "" {
		return 0, malformed("%s: missing path", MethodGetImageCreationDate)
	}
	t, ok, err := imageutil.DateTimeOriginal(path)
	if err != nil {
		slog.Debug("read exif date", "path", path, "error", err)
	}
	if ok {
		return platform.EpochSeconds(t), nil
	}
	return d.CreationDate(path)
}

// TransformImage applies req.Transformation to req.Filepath in place.
func (d *Dispatcher) TransformImage(ctx context.Context, req types.TransformRequest) (bool, error) {
	if req.Filepath == "" {
		return false, malformed("%s: missing filepath", MethodTransformImage)
	}
	t := imageutil.Transform(req.Transformation)
	if !t.Valid() {
		return false, malformed("%s: unknown transformation %d", MethodTransformImage, req.Transformation)
	}
	if req.JPEGCompression < 0 || req.JPEGCompression > 1 {
		return false, malformed("%s: jpegCompression %v out of range [0,1]", MethodTransformImage, req.JPEGCompression)
	}
	return d.images.Transform(ctx, req.Filepath, t, req.JPEGCompression)
}

// LosslessRotate makes the JPEG at path upright according to its EXIF
// orientation. It returns false when nothing had to change.
func (d *Dispatcher) LosslessRotate(ctx context.Context, path string) (bool, error) {
	if path == "" {
		return false, malformed("%s: missing path", MethodLosslessRotate)
	}
	return d.images.AutoRotate(ctx, path)
}

// BundlePath returns the location of the application with identifier.
func (d *Dispatcher) BundlePath(identifier string) (string, bool, error) {
	if identifier == "" {
		return "", false, malformed("%s: missing identifier", MethodBundlePath)
	}
	return d.plat.BundlePath(identifier)
}

// OpenFiles opens req.Files with the application req.Identifier.
func (d *Dispatcher) OpenFiles(req types.OpenFilesRequest) (bool, error) {
	if len(req.Files) == 0 {
		return false, malformed("%s: missing files", MethodOpenFiles)
	}
	if req.Identifier == "" {
		return false, malformed("%s: missing identifier", MethodOpenFiles)
	}
	if err := d.plat.OpenFiles(req.Files, req.Identifier); err != nil {
		return false, err
	}
	return true, nil
}

// Handle runs req and builds its response. events receives file-open
// events for a subscription started by this request; a nil events
// makes subscribing unsupported.
func (d *Dispatcher) Handle(ctx context.Context, req Request, events func(Event)) Response {
	result, err := d.call(ctx, req, events)
	if err != nil {
		be := Classify(err)
		if be.Code == CodeMalformedRequest || be.Code == CodeUnknownMethod {
			slog.Error("reject request", "id", req.ID, "method", req.Method, "error", be)
		} else {
			slog.Warn("request failed", "id", req.ID, "method", req.Method, "error", err)
		}
		return failure(req.ID, be)
	}
	return success(req.ID, result)
}

func (d *Dispatcher) call(ctx context.Context, req Request, events func(Event)) (any, error) {
	switch req.Method {
	case MethodPing:
		return "pong", nil

	case MethodGetInitialFile:
		if path, ok := d.InitialFile(); ok {
			return path, nil
		}
		return nil, nil

	case MethodSubscribe:
		if events == nil {
			return nil, &Error{Code: CodeUnsupported, Message: "no event stream on this connection"}
		}
		return d.Subscribe(func(subscription, path string) {
			events(Event{Type: TypeEvent, Event: EventFileOpened, Subscription: subscription, Path: path})
		}), nil

	case MethodUnsubscribe:
		d.Unsubscribe()
		return true, nil

	case MethodGetPlatformIcon:
		path, err := stringArg(req)
		if err != nil {
			return nil, err
		}
		return d.PlatformIcon(path)

	case MethodMoveToTrash:
		path, err := stringArg(req)
		if err != nil {
			return nil, err
		}
		return d.MoveToTrash(path)

	case MethodGetCreationDate:
		path, err := stringArg(req)
		if err != nil {
			return nil, err
		}
		return d.CreationDate(path)

	case MethodGetModificationDate:
		path, err := stringArg(req)
		if err != nil {
			return nil, err
		}
		return d.ModificationDate(path)

	case MethodGetImageCreationDate:
		path, err := stringArg(req)
		if err != nil {
			return nil, err
		}
		return d.ImageCreationDate(path)

	case MethodTransformImage:
		var args struct {
			Filepath        *string  `json:"filepath"`
			Transformation  *int     `json:"transformation"`
			JPEGCompression *float64 `json:"jpegCompression"`
		}
		if err := objectArg(req, &args); err != nil {
			return nil, err
		}
		if args.Filepath == nil || args.Transformation == nil || args.JPEGCompression == nil {
			return nil, malformed("%s: filepath, transformation and jpegCompression are required", req.Method)
		}
		return d.TransformImage(ctx, types.TransformRequest{
			Filepath:        *args.Filepath,
			Transformation:  *args.Transformation,
			JPEGCompression: *args.JPEGCompression,
		})

	case MethodLosslessRotate:
		path, err := stringArg(req)
		if err != nil {
			return nil, err
		}
		return d.LosslessRotate(ctx, path)

	case MethodBundlePath:
		id, err := stringArg(req)
		if err != nil {
			return nil, err
		}
		path, ok, err := d.BundlePath(id)
		if err != nil || !ok {
			return nil, err
		}
		return path, nil

	case MethodOpenFiles:
		var args struct {
			Files      []string `json:"files"`
			Identifier *string  `json:"identifier"`
		}
		if err := objectArg(req, &args); err != nil {
			return nil, err
		}
		if args.Identifier == nil {
			return nil, malformed("%s: missing identifier", req.Method)
		}
		return d.OpenFiles(types.OpenFilesRequest{Files: args.Files, Identifier: *args.Identifier})

	default:
		return nil, &Error{Code: CodeUnknownMethod, Message: "unknown method " + req.Method}
	}
}

// stringArg decodes the single non-empty string argument of req.
func stringArg(req Request) (string, error) {
	var s *string
	if len(req.Args) == 0 {
		return "", malformed("%s: missing argument", req.Method)
	}
	if err := json.Unmarshal(req.Args, &s); err != nil {
		return "", malformed("%s: argument must be a string: %v", req.Method, err)
	}
	if s == nil || *s == "" {
		return "", malformed("%s: missing argument", req.Method)
	}
	return *s, nil
}

// objectArg decodes the object argument of req into v.
func objectArg(req Request, v any) error {
	if len(req.Args) == 0 || string(req.Args) == "null" {
		return malformed("%s: missing arguments", req.Method)
	}
	if err := json.Unmarshal(req.Args, v); err != nil {
		return malformed("%s: decode arguments: %v", req.Method, err)
	}
	return nil
}
