//go:build darwin

package platform

/*
#cgo CFLAGS: -x objective-c -fobjc-arc
#cgo LDFLAGS: -framework Cocoa
#import <Cocoa/Cocoa.h>
#include <stdlib.h>
#include <string.h>

typedef struct {
	void *bytes;
	int length;
} fotoBuffer;

static fotoBuffer fotoCopyData(NSData *data) {
	fotoBuffer buf = {NULL, 0};
	if (data == nil || [data length] == 0) {
		return buf;
	}
	buf.length = (int)[data length];
	buf.bytes = malloc(buf.length);
	memcpy(buf.bytes, [data bytes], buf.length);
	return buf;
}

static const void *fotoIconForFile(const char *path) {
	@autoreleasepool {
		NSString *p = [NSString stringWithUTF8String:path];
		NSImage *img = [[NSWorkspace sharedWorkspace] iconForFile:p];
		if (img == nil) {
			return NULL;
		}
		return CFBridgingRetain(img);
	}
}

static char *fotoIconName(const void *ref) {
	@autoreleasepool {
		NSImage *img = (__bridge NSImage *)ref;
		NSString *name = [img name];
		if (name == nil || [name length] == 0) {
			return NULL;
		}
		return strdup([name UTF8String]);
	}
}

static fotoBuffer fotoIconTIFF(const void *ref) {
	@autoreleasepool {
		NSImage *img = (__bridge NSImage *)ref;
		return fotoCopyData([img TIFFRepresentation]);
	}
}

static fotoBuffer fotoIconPNG(const void *ref) {
	@autoreleasepool {
		NSImage *img = (__bridge NSImage *)ref;
		NSData *tiff = [img TIFFRepresentation];
		if (tiff == nil) {
			return (fotoBuffer){NULL, 0};
		}
		NSBitmapImageRep *rep = [NSBitmapImageRep imageRepWithData:tiff];
		if (rep == nil) {
			return (fotoBuffer){NULL, 0};
		}
		return fotoCopyData([rep representationUsingType:NSBitmapImageFileTypePNG properties:@{}]);
	}
}

static void fotoIconRelease(const void *ref) {
	CFRelease(ref);
}

static int fotoMoveToTrash(const char *path, char **errOut) {
	@autoreleasepool {
		NSURL *url = [NSURL fileURLWithPath:[NSString stringWithUTF8String:path]];
		NSError *err = nil;
		BOOL ok = [[NSFileManager defaultManager] trashItemAtURL:url resultingItemURL:nil error:&err];
		if (!ok && err != nil) {
			*errOut = strdup([[err localizedDescription] UTF8String]);
		}
		return ok ? 1 : 0;
	}
}

static char *fotoBundlePath(const char *identifier) {
	@autoreleasepool {
		NSString *ident = [NSString stringWithUTF8String:identifier];
		NSURL *url = [[NSWorkspace sharedWorkspace] URLForApplicationWithBundleIdentifier:ident];
		if (url == nil) {
			return NULL;
		}
		return strdup([[url path] UTF8String]);
	}
}
*/
import "C"

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"
	"unsafe"
)

type darwinPlatform struct{}

func newPlatform() Platform {
	return &darwinPlatform{}
}

// darwinIcon holds a retained NSImage.
type darwinIcon struct {
	once sync.Once
	ref  unsafe.Pointer
}

func (i *darwinIcon) Name() string {
	cname := C.fotoIconName(i.ref)
	if cname == nil {
		return ""
	}
	defer C.free(unsafe.Pointer(cname))
	return C.GoString(cname)
}

func (i *darwinIcon) Raw() []byte {
	return goBytes(C.fotoIconTIFF(i.ref))
}

func (i *darwinIcon) PNG() ([]byte, error) {
	png := goBytes(C.fotoIconPNG(i.ref))
	if png == nil {
		return nil, errors.New("NSBitmapImageRep produced no PNG data")
	}
	return png, nil
}

func (i *darwinIcon) Release() {
	i.once.Do(func() {
		C.fotoIconRelease(i.ref)
	})
}

func goBytes(buf C.fotoBuffer) []byte {
	if buf.bytes == nil {
		return nil
	}
	defer C.free(buf.bytes)
	return C.GoBytes(buf.bytes, buf.length)
}

func (p *darwinPlatform) Icon(path string) (Icon, error) {
	// iconForFile answers with a generic icon for missing paths.
	if err := checkExists(path); err != nil {
		return nil, err
	}

	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	ref := C.fotoIconForFile(cpath)
	if ref == nil {
		return nil, fmt.Errorf("no icon for %s", path)
	}
	return &darwinIcon{ref: unsafe.Pointer(ref)}, nil
}

func (p *darwinPlatform) MoveToTrash(path string) error {
	if err := checkExists(path); err != nil {
		return err
	}

	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	var cerr *C.char
	if C.fotoMoveToTrash(cpath, &cerr) == 0 {
		msg := "unknown error"
		if cerr != nil {
			msg = C.GoString(cerr)
			C.free(unsafe.Pointer(cerr))
		}
		return fmt.Errorf("trash %s: %s", path, msg)
	}
	return nil
}

func (p *darwinPlatform) CreationDate(path string) (time.Time, error) {
	return CreationDate(path)
}

func (p *darwinPlatform) ModificationDate(path string) (time.Time, error) {
	return ModificationDate(path)
}

func (p *darwinPlatform) BundlePath(identifier string) (string, bool, error) {
	cid := C.CString(identifier)
	defer C.free(unsafe.Pointer(cid))

	cpath := C.fotoBundlePath(cid)
	if cpath == nil {
		return "", false, nil
	}
	defer C.free(unsafe.Pointer(cpath))
	return C.GoString(cpath), true, nil
}

// OpenFiles hands files to the application via open(1).
func (p *darwinPlatform) OpenFiles(files []string, identifier string) error {
	if len(files) == 0 {
		return nil
	}
	for _, f := range files {
		if err := checkExists(f); err != nil {
			return err
		}
	}

	args := append([]string{"-b", identifier}, files...)
	out, err := exec.Command("open", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("open -b %s: %w: %s", identifier, err, strings.TrimSpace(string(out)))
	}
	return nil
}
