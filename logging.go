// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package qpack

import "github.com/sirupsen/logrus"

// _lg is the package-level logger: a default logger any caller can swap
// out, rather than a required constructor argument on every Pack/Unpack
// call.
var _lg = logrus.New()

// SetLogger replaces the package-level logger used for diagnostic
// Debug output (packer buffer growth, and packing a Go map through the
// reflect-based fallback). The default logger discards nothing but also
// emits nothing at its default level, so most callers never need this.
func SetLogger(lg *logrus.Logger) {
	if lg != nil {
		_lg = lg
	}
}
