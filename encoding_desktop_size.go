// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package vnc

// PseudoDesktopSize (tag -223) carries no pixels; its rectangle geometry
// conveys the new framebuffer extent. See Session.framebufferManualEndUpdate,
// which prepends one whenever the framebuffer's dimensions have diverged
// from what the client last observed and the client has advertised the tag.
