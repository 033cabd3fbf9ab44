package gdal

/*
#include <stdlib.h>
#include "gdal.h"
#include "ogr_api.h"

#cgo pkg-config: gdal
*/
import "C"

import (
	"unsafe"

	rferrors "github.com/matzehuels/rasterfold/pkg/errors"
)

// nullFields scans the first layer of the vector dataset at path and
// returns, per feature position, the names of the fields that are unset
// or null. godal reads such fields as 0 or "", which would fold a missing
// value as a real one.
//
// Geometries are ignored during the scan. Positions without null fields
// are absent from the map.
func nullFields(path string) (map[int][]string, error) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	ds := C.GDALOpenEx(cpath, C.uint(C.GDAL_OF_VECTOR|C.GDAL_OF_READONLY), nil, nil, nil)
	if ds == nil {
		return nil, rferrors.New(rferrors.ErrCodeIO, "open vector %s", path)
	}
	defer C.GDALClose(ds)

	if C.GDALDatasetGetLayerCount(ds) == 0 {
		return nil, nil
	}
	layer := C.GDALDatasetGetLayer(ds, 0)

	geom := C.CString("OGR_GEOMETRY")
	defer C.free(unsafe.Pointer(geom))
	ignored := [2]*C.char{geom, nil}
	C.OGR_L_SetIgnoredFields(layer, &ignored[0])
	C.OGR_L_ResetReading(layer)

	nulls := make(map[int][]string)
	for i := 0; ; i++ {
		f := C.OGR_L_GetNextFeature(layer)
		if f == nil {
			break
		}
		n := C.OGR_F_GetFieldCount(f)
		for j := C.int(0); j < n; j++ {
			if C.OGR_F_IsFieldSetAndNotNull(f, j) != 0 {
				continue
			}
			defn := C.OGR_F_GetFieldDefnRef(f, j)
			nulls[i] = append(nulls[i], C.GoString(C.OGR_Fld_GetNameRef(defn)))
		}
		C.OGR_F_Destroy(f)
	}
	return nulls, nil
}
