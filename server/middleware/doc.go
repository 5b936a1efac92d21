// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package middleware provides the HTTP middleware chain of the resolve service.

Route definitions are centralized in router.DefineRoutes. Handlers return
errors and are wrapped with CatchError, which turns them into JSON error
responses.
*/
package middleware
